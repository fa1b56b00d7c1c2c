package dto

import (
	"time"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountBalanceResponse defines the data returned for a balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// PeriodBalanceResponse defines the data returned for one account-period
// aggregate.
type PeriodBalanceResponse struct {
	AccountID      string          `json:"accountID"`
	PeriodKey      string          `json:"periodKey"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Movement       decimal.Decimal `json:"movement"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	LastEntryAt    time.Time       `json:"lastEntryAt"`
}

// ControlDriftResponse reports one control account whose cached balance
// disagrees with its subledger lines.
type ControlDriftResponse struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	CachedBalance   decimal.Decimal `json:"cachedBalance"`
	RecomputedTotal decimal.Decimal `json:"recomputedTotal"`
	Drift           decimal.Decimal `json:"drift"`
}

// ToPeriodBalanceResponse converts a domain.AccountPeriodBalance.
func ToPeriodBalanceResponse(b *domain.AccountPeriodBalance) PeriodBalanceResponse {
	return PeriodBalanceResponse{
		AccountID:      b.AccountID,
		PeriodKey:      b.PeriodKey,
		OpeningBalance: b.OpeningBalance,
		Movement:       b.Movement,
		ClosingBalance: b.ClosingBalance,
		LastEntryAt:    b.LastEntryAt,
	}
}

// ToPeriodBalanceResponses converts a slice of period balances.
func ToPeriodBalanceResponses(balances []domain.AccountPeriodBalance) []PeriodBalanceResponse {
	out := make([]PeriodBalanceResponse, len(balances))
	for i := range balances {
		out[i] = ToPeriodBalanceResponse(&balances[i])
	}
	return out
}

// ToControlDriftResponses converts reconciliation drift findings.
func ToControlDriftResponses(drifts []domain.ControlAccountDrift) []ControlDriftResponse {
	out := make([]ControlDriftResponse, len(drifts))
	for i, drift := range drifts {
		out[i] = ControlDriftResponse{
			AccountID:       drift.AccountID,
			Code:            drift.Code,
			CachedBalance:   drift.CachedBalance,
			RecomputedTotal: drift.RecomputedTotal,
			Drift:           drift.Drift,
		}
	}
	return out
}
