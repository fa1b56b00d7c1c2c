package dto

import (
	"time"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineID         string          `json:"lineID"`
	Position       int             `json:"position"`
	AccountID      string          `json:"accountID"`
	Side           string          `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	Narration      string          `json:"narration,omitempty"`
	SubledgerType  string          `json:"subledgerType,omitempty"`
	SubledgerID    string          `json:"subledgerID,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID        string              `json:"entryID"`
	EntryDate      time.Time           `json:"entryDate"`
	SourceType     string              `json:"sourceType"`
	SourceID       string              `json:"sourceID"`
	IdempotencyKey *string             `json:"idempotencyKey,omitempty"`
	RuleCode       string              `json:"ruleCode"`
	CorrectionOf   *string             `json:"correctionOf,omitempty"`
	ReversedBy     *string             `json:"reversedBy,omitempty"`
	Status         string              `json:"status"`
	Narration      string              `json:"narration"`
	CurrencyCode   string              `json:"currencyCode"`
	Amount         decimal.Decimal     `json:"amount"`
	Lines          []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// ListEntriesParams narrows and paginates entry listings.
type ListEntriesParams struct {
	FromDate   *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"toDate" time_format:"2006-01-02"`
	SourceType string     `form:"sourceType"`
	SourceID   string     `form:"sourceID"`
	Limit      int        `form:"limit"`
	NextToken  *string    `form:"nextToken"`
}

// ListEntriesResponse carries one page of entries plus the next-page token.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesResponse carries one page of account lines plus the next-page token.
type ListLinesResponse struct {
	Lines     []EntryLineResponse `json:"lines"`
	NextToken *string             `json:"nextToken,omitempty"`
}

// ReverseEntryRequest defines the payload for reversing a posted entry.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AmendEntryRequest defines the payload for amending a posted entry: the
// original is reversed and the corrected event is posted in its place.
type AmendEntryRequest struct {
	Reason string           `json:"reason" binding:"required"`
	Event  PostEventRequest `json:"event" binding:"required"`
}

// CorrectionChainResponse lists an entry's correction chain, oldest first.
type CorrectionChainResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// ToEntryLineResponse converts a domain.EntryLine.
func ToEntryLineResponse(l *domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:         l.LineID,
		Position:       l.Position,
		AccountID:      l.AccountID,
		Side:           string(l.Side),
		Amount:         l.Amount,
		Narration:      l.Narration,
		SubledgerType:  l.SubledgerType,
		SubledgerID:    l.SubledgerID,
		RunningBalance: l.RunningBalance,
	}
}

// ToEntryLineResponses converts a slice of domain lines.
func ToEntryLineResponses(lines []domain.EntryLine) []EntryLineResponse {
	out := make([]EntryLineResponse, len(lines))
	for i := range lines {
		out[i] = ToEntryLineResponse(&lines[i])
	}
	return out
}

// ToEntryResponse converts a domain.JournalEntry, including lines when present.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:        e.EntryID,
		EntryDate:      e.EntryDate,
		SourceType:     e.SourceType,
		SourceID:       e.SourceID,
		IdempotencyKey: e.IdempotencyKey,
		RuleCode:       e.RuleCode,
		CorrectionOf:   e.CorrectionOf,
		ReversedBy:     e.ReversedBy,
		Status:         string(e.Status),
		Narration:      e.Narration,
		CurrencyCode:   e.CurrencyCode,
		Amount:         e.Amount,
		CreatedAt:      e.CreatedAt,
	}
	if len(e.Lines) > 0 {
		resp.Lines = ToEntryLineResponses(e.Lines)
	}
	return resp
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}
