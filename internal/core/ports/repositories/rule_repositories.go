package repositories

import (
	"context"
	"time"

	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// RuleReader defines read operations for posting rules.
type RuleReader interface {
	// FindRuleByID retrieves a rule (with its line templates) by id.
	FindRuleByID(ctx context.Context, tenantID string, ruleID string) (*domain.PostingRule, error)

	// FindRuleByCode retrieves a rule by its code within a fiscal year.
	FindRuleByCode(ctx context.Context, tenantID string, ruleCode string, fiscalYear string) (*domain.PostingRule, error)

	// FindMatchingRules retrieves the active rules whose selector matches
	// (sourceType, triggerEvent) for the given fiscal year, with line
	// templates populated, ordered by priority descending then rule code.
	FindMatchingRules(ctx context.Context, tenantID string, sourceType string, triggerEvent string, fiscalYear string) ([]domain.PostingRule, error)

	// ListRules retrieves a paginated list of rules for a tenant.
	ListRules(ctx context.Context, tenantID string, limit int, offset int) ([]domain.PostingRule, error)
}

// RuleWriter defines write operations for posting rules.
type RuleWriter interface {
	// SaveRule persists a rule and its line templates atomically. The
	// (tenant, rule code, fiscal year) uniqueness is enforced by the store.
	SaveRule(ctx context.Context, rule domain.PostingRule) error

	// DeactivateRule marks a rule as inactive.
	DeactivateRule(ctx context.Context, tenantID string, ruleID string, userID string, now time.Time) error
}

// RuleRepositoryFacade combines all rule-related repository interfaces.
type RuleRepositoryFacade interface {
	RuleReader
	RuleWriter
}
