package domain

// PostingRule is a versioned, tenant-scoped template that deterministically
// expands a business event into a balanced journal entry. A rule is selected
// by its (SourceType, TriggerEvent) pair for a given fiscal year; ties are
// broken by descending priority, then by condition specificity.
type PostingRule struct {
	RuleID       string     `json:"ruleID"`       // Primary Key (e.g., UUID)
	TenantID     string     `json:"tenantID"`     // FK -> tenants.tenant_id (NOT NULL)
	RuleCode     string     `json:"ruleCode"`     // Unique per (tenant, fiscal year), e.g. "PMT_DOMESTIC"
	FiscalYear   string     `json:"fiscalYear"`   // Version scope, e.g. "2025-26"
	SourceType   string     `json:"sourceType"`   // Event selector, e.g. "payment"
	TriggerEvent string     `json:"triggerEvent"` // Event selector, e.g. "on_finalize"
	Priority     int        `json:"priority"`     // Higher wins when several rules match
	Condition    string     `json:"condition"`    // Optional boolean expression gating applicability
	Lines        []RuleLine `json:"lines"`        // Ordered line templates
	IsActive     bool       `json:"isActive"`
	AuditFields
}

// RuleLine is one debit/credit line template inside a posting rule.
// Exactly one of AccountCode and AccountField is set: either the line posts
// to a fixed account code, or the code is read from the named event field.
type RuleLine struct {
	Position       int       `json:"position"`       // Order within the rule
	AccountCode    string    `json:"accountCode"`    // Fixed account code, or empty
	AccountField   string    `json:"accountField"`   // Event field naming the account code, or empty
	Side           EntrySide `json:"side"`           // DEBIT or CREDIT
	AmountExpr     string    `json:"amountExpr"`     // Expression over event fields, e.g. "amount - tds_amount"
	Narration      string    `json:"narration"`      // Template with {field} placeholders
	SubledgerField string    `json:"subledgerField"` // Optional event field carrying a subledger reference
}

// HasCondition reports whether the rule is gated by a condition expression.
func (r PostingRule) HasCondition() bool {
	return r.Condition != ""
}
