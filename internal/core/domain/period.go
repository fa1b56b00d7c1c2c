package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountPeriodBalance is a cached aggregate of an account's movement within
// one fiscal period. It is updated transactionally alongside entry posting;
// recomputing it from raw lines is reserved for audit jobs.
type AccountPeriodBalance struct {
	AccountID      string          `json:"accountID"`
	TenantID       string          `json:"tenantID"`
	PeriodKey      string          `json:"periodKey"` // e.g. "2025-26-03" (third month of fiscal year 2025-26)
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Movement       decimal.Decimal `json:"movement"` // Net signed movement within the period
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	LastEntryAt    time.Time       `json:"lastEntryAt"`
}

// ControlAccountDrift reports a mismatch between a control account's cached
// balance and the sum of its linked subledger lines, found by the
// reconciliation job.
type ControlAccountDrift struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	CachedBalance   decimal.Decimal `json:"cachedBalance"`
	RecomputedTotal decimal.Decimal `json:"recomputedTotal"`
	Drift           decimal.Decimal `json:"drift"`
}
