package dto

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating an account.
type CreateAccountRequest struct {
	Code            string          `json:"code" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	AccountType     string          `json:"accountType" binding:"required,accounttype"`
	CurrencyCode    string          `json:"currencyCode" binding:"required,len=3"`
	ParentAccountID string          `json:"parentAccountID"`
	IsControl       bool            `json:"isControl"`
	SubledgerType   string          `json:"subledgerType"`
	Description     string          `json:"description"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
}

// UpdateAccountRequest defines the payload for updating an account's
// descriptive fields. Balance and type are never updatable.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     string          `json:"accountType"`
	NormalSide      string          `json:"normalSide"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID string          `json:"parentAccountID,omitempty"`
	IsControl       bool            `json:"isControl"`
	SubledgerType   string          `json:"subledgerType,omitempty"`
	Description     string          `json:"description,omitempty"`
	IsActive        bool            `json:"isActive"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		NormalSide:      string(a.NormalSide),
		CurrencyCode:    a.CurrencyCode,
		ParentAccountID: a.ParentAccountID,
		IsControl:       a.IsControl,
		SubledgerType:   a.SubledgerType,
		Description:     a.Description,
		IsActive:        a.IsActive,
		OpeningBalance:  a.OpeningBalance,
		Balance:         a.Balance,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}
