package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountPeriodBalance maps to the account_period_balances table.
type AccountPeriodBalance struct {
	AccountID      string          `json:"accountID"`
	TenantID       string          `json:"tenantID"`
	PeriodKey      string          `json:"periodKey"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Movement       decimal.Decimal `json:"movement"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	LastEntryAt    time.Time       `json:"lastEntryAt"`
}
