package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	// Draft entries exist only in memory, produced by rule expansion.
	Draft EntryStatus = "DRAFT"
	// Posted is terminal for normal entries; a posted entry's lines are immutable.
	Posted EntryStatus = "POSTED"
	// Void marks an entry rejected before posting.
	Void EntryStatus = "VOID"
)

// JournalEntry represents a single balanced financial event composed of
// debit and credit lines. For every posted entry the sum of debit amounts
// equals the sum of credit amounts, to the smallest currency unit.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`  // Primary Key (e.g., UUID)
	TenantID       string          `json:"tenantID"` // FK -> tenants.tenant_id (NOT NULL)
	EntryDate      time.Time       `json:"entryDate"`
	SourceType     string          `json:"sourceType"` // Originating business record type
	SourceID       string          `json:"sourceID"`   // Originating business record id
	IdempotencyKey *string         `json:"idempotencyKey,omitempty"` // Unique per tenant when present
	RuleCode       string          `json:"ruleCode"`                 // Rule that produced this entry
	CorrectionOf   *string         `json:"correctionOf,omitempty"`   // FK -> journal_entries.entry_id
	ReversedBy     *string         `json:"reversedBy,omitempty"`     // Set on the original when reversed
	Status         EntryStatus     `json:"status"`
	Narration      string          `json:"narration"`
	CurrencyCode   string          `json:"currencyCode"`
	Amount         decimal.Decimal `json:"amount"` // Total of the debit side
	Lines          []EntryLine     `json:"lines,omitempty"`
	AuditFields
}

// EntryLine is a single debit or credit line within a journal entry.
type EntryLine struct {
	LineID         string          `json:"lineID"`  // Primary Key (e.g., UUID)
	EntryID        string          `json:"entryID"` // FK -> journal_entries.entry_id (NOT NULL)
	Position       int             `json:"position"`
	AccountID      string          `json:"accountID"` // FK -> accounts.account_id (NOT NULL)
	Side           EntrySide       `json:"side"`      // DEBIT or CREDIT
	Amount         decimal.Decimal `json:"amount"`    // Positive value
	Narration      string          `json:"narration"`
	SubledgerType  string          `json:"subledgerType"` // Optional subledger linkage
	SubledgerID    string          `json:"subledgerID"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line was applied
	AuditFields
}

// DebitTotal sums the debit-side amounts of the entry's lines.
func (e JournalEntry) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Debit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// CreditTotal sums the credit-side amounts of the entry's lines.
func (e JournalEntry) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Credit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// IsBalanced reports whether debits equal credits exactly.
func (e JournalEntry) IsBalanced() bool {
	return e.DebitTotal().Equal(e.CreditTotal())
}

// EntryFilter narrows entry listings on the read surface.
type EntryFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	SourceType string
	SourceID   string
}
