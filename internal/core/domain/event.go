package domain

import "time"

// BusinessEvent is the inbound shape emitted by business-process
// collaborators (invoicing, payroll, payments, ...). The engine never
// inspects sourceType-specific semantics beyond the fields a rule names.
type BusinessEvent struct {
	TenantID       string         `json:"tenantID"`
	SourceType     string         `json:"sourceType"`   // e.g. "invoice", "payment", "payroll_run"
	SourceID       string         `json:"sourceID"`     // Back-reference to the originating business record
	TriggerEvent   string         `json:"triggerEvent"` // e.g. "on_finalize", "on_approve"
	OccurredAt     time.Time      `json:"occurredAt"`
	IdempotencyKey *string        `json:"idempotencyKey,omitempty"` // At-most-once posting token
	Fields         map[string]any `json:"fields"`                   // Rule-referenced payload
}
