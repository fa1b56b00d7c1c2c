package models

import "github.com/shopspring/decimal"

// AccountType mirrors domain.AccountType at the persistence boundary.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// EntrySide mirrors domain.EntrySide at the persistence boundary.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Account maps to the accounts table.
type Account struct {
	AccountID       string          `json:"accountID"`
	TenantID        string          `json:"tenantID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	NormalSide      EntrySide       `json:"normalSide"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID *string         `json:"parentAccountID"` // Nullable self-reference
	IsControl       bool            `json:"isControl"`
	SubledgerType   *string         `json:"subledgerType"` // Set when IsControl
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"`
	AuditFields
}
