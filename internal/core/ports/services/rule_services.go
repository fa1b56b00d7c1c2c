package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/dto"
)

// RuleSvcFacade defines operations on the posting rule registry.
type RuleSvcFacade interface {
	CreateRule(ctx context.Context, tenantID string, req dto.CreateRuleRequest, creatorUserID string) (*domain.PostingRule, error)
	GetRuleByID(ctx context.Context, tenantID string, ruleID string) (*domain.PostingRule, error)
	ListRules(ctx context.Context, tenantID string, limit int, offset int) ([]domain.PostingRule, error)
	DeactivateRule(ctx context.Context, tenantID string, ruleID string, userID string) error

	// Resolve returns the ordered candidate rules for an event selector
	// within a fiscal year: active rules matching (sourceType,
	// triggerEvent), highest priority first, conditioned rules before
	// unconditioned ones at equal priority. Returns ErrNoMatchingRule when
	// no rule qualifies.
	Resolve(ctx context.Context, tenantID string, sourceType string, triggerEvent string, fiscalYear string) ([]domain.PostingRule, error)
}
