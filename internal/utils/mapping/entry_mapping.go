package mapping

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to its model.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:        d.EntryID,
		TenantID:       d.TenantID,
		EntryDate:      d.EntryDate,
		SourceType:     d.SourceType,
		SourceID:       d.SourceID,
		IdempotencyKey: d.IdempotencyKey,
		RuleCode:       d.RuleCode,
		CorrectionOf:   d.CorrectionOf,
		ReversedBy:     d.ReversedBy,
		Status:         models.EntryStatus(d.Status),
		Narration:      d.Narration,
		CurrencyCode:   d.CurrencyCode,
		Amount:         d.Amount,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to its domain form
// (without lines; those are loaded and attached separately).
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:        m.EntryID,
		TenantID:       m.TenantID,
		EntryDate:      m.EntryDate,
		SourceType:     m.SourceType,
		SourceID:       m.SourceID,
		IdempotencyKey: m.IdempotencyKey,
		RuleCode:       m.RuleCode,
		CorrectionOf:   m.CorrectionOf,
		ReversedBy:     m.ReversedBy,
		Status:         domain.EntryStatus(m.Status),
		Narration:      m.Narration,
		CurrencyCode:   m.CurrencyCode,
		Amount:         m.Amount,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntryLine converts a domain EntryLine to its model.
func ToModelEntryLine(d domain.EntryLine) models.EntryLine {
	m := models.EntryLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		Position:       d.Position,
		AccountID:      d.AccountID,
		Side:           models.EntrySide(d.Side),
		Amount:         d.Amount,
		Narration:      d.Narration,
		RunningBalance: d.RunningBalance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.SubledgerType != "" {
		m.SubledgerType = &d.SubledgerType
	}
	if d.SubledgerID != "" {
		m.SubledgerID = &d.SubledgerID
	}
	return m
}

// ToDomainEntryLine converts a model EntryLine to its domain form.
func ToDomainEntryLine(m models.EntryLine) domain.EntryLine {
	d := domain.EntryLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		Position:       m.Position,
		AccountID:      m.AccountID,
		Side:           domain.EntrySide(m.Side),
		Amount:         m.Amount,
		Narration:      m.Narration,
		RunningBalance: m.RunningBalance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.SubledgerType != nil {
		d.SubledgerType = *m.SubledgerType
	}
	if m.SubledgerID != nil {
		d.SubledgerID = *m.SubledgerID
	}
	return d
}

// ToDomainEntryLineSlice converts a slice of model lines to domain lines.
func ToDomainEntryLineSlice(ms []models.EntryLine) []domain.EntryLine {
	out := make([]domain.EntryLine, len(ms))
	for i, m := range ms {
		out[i] = ToDomainEntryLine(m)
	}
	return out
}

// ToDomainPeriodBalance converts a model period balance to its domain form.
func ToDomainPeriodBalance(m models.AccountPeriodBalance) domain.AccountPeriodBalance {
	return domain.AccountPeriodBalance{
		AccountID:      m.AccountID,
		TenantID:       m.TenantID,
		PeriodKey:      m.PeriodKey,
		OpeningBalance: m.OpeningBalance,
		Movement:       m.Movement,
		ClosingBalance: m.ClosingBalance,
		LastEntryAt:    m.LastEntryAt,
	}
}
