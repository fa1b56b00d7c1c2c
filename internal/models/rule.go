package models

// PostingRule maps to the posting_rules table.
type PostingRule struct {
	RuleID       string `json:"ruleID"`
	TenantID     string `json:"tenantID"`
	RuleCode     string `json:"ruleCode"`
	FiscalYear   string `json:"fiscalYear"`
	SourceType   string `json:"sourceType"`
	TriggerEvent string `json:"triggerEvent"`
	Priority     int    `json:"priority"`
	Condition    string `json:"condition"` // Empty when the rule is unconditional
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// PostingRuleLine maps to the posting_rule_lines table.
type PostingRuleLine struct {
	RuleLineID     string    `json:"ruleLineID"`
	RuleID         string    `json:"ruleID"`
	Position       int       `json:"position"`
	AccountCode    *string   `json:"accountCode"`  // Fixed code; NULL when AccountField is set
	AccountField   *string   `json:"accountField"` // Event field name; NULL when AccountCode is set
	Side           EntrySide `json:"side"`
	AmountExpr     string    `json:"amountExpr"`
	Narration      string    `json:"narration"`
	SubledgerField *string   `json:"subledgerField"`
}
