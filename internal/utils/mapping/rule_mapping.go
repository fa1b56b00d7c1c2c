package mapping

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/models"
)

// ToModelPostingRule converts a domain PostingRule header to its model.
func ToModelPostingRule(d domain.PostingRule) models.PostingRule {
	return models.PostingRule{
		RuleID:       d.RuleID,
		TenantID:     d.TenantID,
		RuleCode:     d.RuleCode,
		FiscalYear:   d.FiscalYear,
		SourceType:   d.SourceType,
		TriggerEvent: d.TriggerEvent,
		Priority:     d.Priority,
		Condition:    d.Condition,
		IsActive:     d.IsActive,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToModelRuleLine converts one rule line template to its model.
func ToModelRuleLine(ruleLineID, ruleID string, d domain.RuleLine) models.PostingRuleLine {
	m := models.PostingRuleLine{
		RuleLineID: ruleLineID,
		RuleID:     ruleID,
		Position:   d.Position,
		Side:       models.EntrySide(d.Side),
		AmountExpr: d.AmountExpr,
		Narration:  d.Narration,
	}
	if d.AccountCode != "" {
		m.AccountCode = &d.AccountCode
	}
	if d.AccountField != "" {
		m.AccountField = &d.AccountField
	}
	if d.SubledgerField != "" {
		m.SubledgerField = &d.SubledgerField
	}
	return m
}

// ToDomainPostingRule converts a model rule header and its line models to a
// domain PostingRule.
func ToDomainPostingRule(m models.PostingRule, lines []models.PostingRuleLine) domain.PostingRule {
	d := domain.PostingRule{
		RuleID:       m.RuleID,
		TenantID:     m.TenantID,
		RuleCode:     m.RuleCode,
		FiscalYear:   m.FiscalYear,
		SourceType:   m.SourceType,
		TriggerEvent: m.TriggerEvent,
		Priority:     m.Priority,
		Condition:    m.Condition,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	d.Lines = make([]domain.RuleLine, len(lines))
	for i, line := range lines {
		d.Lines[i] = ToDomainRuleLine(line)
	}
	return d
}

// ToDomainRuleLine converts a model rule line to its domain form.
func ToDomainRuleLine(m models.PostingRuleLine) domain.RuleLine {
	d := domain.RuleLine{
		Position:   m.Position,
		Side:       domain.EntrySide(m.Side),
		AmountExpr: m.AmountExpr,
		Narration:  m.Narration,
	}
	if m.AccountCode != nil {
		d.AccountCode = *m.AccountCode
	}
	if m.AccountField != nil {
		d.AccountField = *m.AccountField
	}
	if m.SubledgerField != nil {
		d.SubledgerField = *m.SubledgerField
	}
	return d
}
