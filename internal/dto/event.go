package dto

import (
	"time"

	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// PostEventRequest defines the inbound business event payload.
type PostEventRequest struct {
	SourceType     string         `json:"sourceType" binding:"required"`
	SourceID       string         `json:"sourceID" binding:"required"`
	TriggerEvent   string         `json:"triggerEvent" binding:"required"`
	OccurredAt     time.Time      `json:"occurredAt" binding:"required"`
	IdempotencyKey *string        `json:"idempotencyKey,omitempty"`
	Fields         map[string]any `json:"fields" binding:"required"`
}

// ToBusinessEvent converts the request into the domain event for a tenant.
func (r PostEventRequest) ToBusinessEvent(tenantID string) domain.BusinessEvent {
	return domain.BusinessEvent{
		TenantID:       tenantID,
		SourceType:     r.SourceType,
		SourceID:       r.SourceID,
		TriggerEvent:   r.TriggerEvent,
		OccurredAt:     r.OccurredAt,
		IdempotencyKey: r.IdempotencyKey,
		Fields:         r.Fields,
	}
}
