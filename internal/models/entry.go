package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors domain.EntryStatus at the persistence boundary.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Void   EntryStatus = "VOID"
)

// JournalEntry maps to the journal_entries table.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`
	TenantID       string          `json:"tenantID"`
	EntryDate      time.Time       `json:"entryDate"`
	SourceType     string          `json:"sourceType"`
	SourceID       string          `json:"sourceID"`
	IdempotencyKey *string         `json:"idempotencyKey"`
	RuleCode       string          `json:"ruleCode"`
	CorrectionOf   *string         `json:"correctionOf"`
	ReversedBy     *string         `json:"reversedBy"`
	Status         EntryStatus     `json:"status"`
	Narration      string          `json:"narration"`
	CurrencyCode   string          `json:"currencyCode"`
	Amount         decimal.Decimal `json:"amount"`
	AuditFields
}

// EntryLine maps to the journal_entry_lines table.
type EntryLine struct {
	LineID         string          `json:"lineID"`
	EntryID        string          `json:"entryID"`
	Position       int             `json:"position"`
	AccountID      string          `json:"accountID"`
	Side           EntrySide       `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	Narration      string          `json:"narration"`
	SubledgerType  *string         `json:"subledgerType"`
	SubledgerID    *string         `json:"subledgerID"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	AuditFields
}
