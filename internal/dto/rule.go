package dto

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// RuleLineRequest defines one line template in a rule creation payload.
// Exactly one of accountCode/accountField must be set.
type RuleLineRequest struct {
	AccountCode    string `json:"accountCode"`
	AccountField   string `json:"accountField"`
	Side           string `json:"side" binding:"required,entryside"`
	AmountExpr     string `json:"amountExpr" binding:"required"`
	Narration      string `json:"narration"`
	SubledgerField string `json:"subledgerField"`
}

// CreateRuleRequest defines the payload for creating a posting rule.
type CreateRuleRequest struct {
	RuleCode     string            `json:"ruleCode" binding:"required"`
	FiscalYear   string            `json:"fiscalYear" binding:"required"`
	SourceType   string            `json:"sourceType" binding:"required"`
	TriggerEvent string            `json:"triggerEvent" binding:"required"`
	Priority     int               `json:"priority"`
	Condition    string            `json:"condition"`
	Lines        []RuleLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// RuleLineResponse defines the data returned for a rule line template.
type RuleLineResponse struct {
	Position       int    `json:"position"`
	AccountCode    string `json:"accountCode,omitempty"`
	AccountField   string `json:"accountField,omitempty"`
	Side           string `json:"side"`
	AmountExpr     string `json:"amountExpr"`
	Narration      string `json:"narration,omitempty"`
	SubledgerField string `json:"subledgerField,omitempty"`
}

// RuleResponse defines the data returned for a posting rule.
type RuleResponse struct {
	RuleID       string             `json:"ruleID"`
	RuleCode     string             `json:"ruleCode"`
	FiscalYear   string             `json:"fiscalYear"`
	SourceType   string             `json:"sourceType"`
	TriggerEvent string             `json:"triggerEvent"`
	Priority     int                `json:"priority"`
	Condition    string             `json:"condition,omitempty"`
	IsActive     bool               `json:"isActive"`
	Lines        []RuleLineResponse `json:"lines"`
}

// ToRuleResponse converts a domain.PostingRule to RuleResponse.
func ToRuleResponse(r *domain.PostingRule) RuleResponse {
	resp := RuleResponse{
		RuleID:       r.RuleID,
		RuleCode:     r.RuleCode,
		FiscalYear:   r.FiscalYear,
		SourceType:   r.SourceType,
		TriggerEvent: r.TriggerEvent,
		Priority:     r.Priority,
		Condition:    r.Condition,
		IsActive:     r.IsActive,
		Lines:        make([]RuleLineResponse, len(r.Lines)),
	}
	for i, line := range r.Lines {
		resp.Lines[i] = RuleLineResponse{
			Position:       line.Position,
			AccountCode:    line.AccountCode,
			AccountField:   line.AccountField,
			Side:           string(line.Side),
			AmountExpr:     line.AmountExpr,
			Narration:      line.Narration,
			SubledgerField: line.SubledgerField,
		}
	}
	return resp
}

// ToRuleResponses converts a slice of domain rules.
func ToRuleResponses(rules []domain.PostingRule) []RuleResponse {
	out := make([]RuleResponse, len(rules))
	for i := range rules {
		out[i] = ToRuleResponse(&rules[i])
	}
	return out
}
