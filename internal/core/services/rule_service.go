package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/core/expr"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// ruleService provides posting rule registry operations.
type ruleService struct {
	ruleRepo  portsrepo.RuleRepositoryFacade
	tenantSvc portssvc.TenantSvcFacade
}

// NewRuleService creates a new RuleService.
func NewRuleService(ruleRepo portsrepo.RuleRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.RuleSvcFacade {
	return &ruleService{ruleRepo: ruleRepo, tenantSvc: tenantSvc}
}

var _ portssvc.RuleSvcFacade = (*ruleService)(nil)

// CreateRule validates and persists a posting rule. Expressions are parsed
// at registration time so a malformed rule can never reach the evaluator.
func (s *ruleService) CreateRule(ctx context.Context, tenantID string, req dto.CreateRuleRequest, creatorUserID string) (*domain.PostingRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenantSvc.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	if req.Condition != "" {
		if _, err := expr.Parse(req.Condition); err != nil {
			return nil, fmt.Errorf("%w: condition: %v", apperrors.ErrValidation, err)
		}
	}

	hasDebit := false
	hasCredit := false
	lines := make([]domain.RuleLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		if (lineReq.AccountCode == "") == (lineReq.AccountField == "") {
			return nil, fmt.Errorf("%w: line %d must set exactly one of accountCode and accountField", apperrors.ErrValidation, i+1)
		}
		if _, err := expr.Parse(lineReq.AmountExpr); err != nil {
			return nil, fmt.Errorf("%w: line %d amount expression: %v", apperrors.ErrValidation, i+1, err)
		}
		side := domain.EntrySide(lineReq.Side)
		switch side {
		case domain.Debit:
			hasDebit = true
		case domain.Credit:
			hasCredit = true
		default:
			return nil, fmt.Errorf("%w: line %d has unknown side %q", apperrors.ErrValidation, i+1, lineReq.Side)
		}
		lines[i] = domain.RuleLine{
			Position:       i + 1,
			AccountCode:    lineReq.AccountCode,
			AccountField:   lineReq.AccountField,
			Side:           side,
			AmountExpr:     lineReq.AmountExpr,
			Narration:      lineReq.Narration,
			SubledgerField: lineReq.SubledgerField,
		}
	}
	if !hasDebit || !hasCredit {
		return nil, fmt.Errorf("%w: rule must template at least one debit and one credit line", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rule := domain.PostingRule{
		RuleID:       uuid.NewString(),
		TenantID:     tenantID,
		RuleCode:     req.RuleCode,
		FiscalYear:   req.FiscalYear,
		SourceType:   req.SourceType,
		TriggerEvent: req.TriggerEvent,
		Priority:     req.Priority,
		Condition:    req.Condition,
		Lines:        lines,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		logger.Error("Failed to save posting rule", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("rule_code", req.RuleCode))
		return nil, err
	}

	logger.Info("Posting rule created", slog.String("rule_id", rule.RuleID), slog.String("tenant_id", tenantID), slog.String("rule_code", rule.RuleCode), slog.String("fiscal_year", rule.FiscalYear))
	return &rule, nil
}

// GetRuleByID retrieves a rule with its line templates.
func (s *ruleService) GetRuleByID(ctx context.Context, tenantID string, ruleID string) (*domain.PostingRule, error) {
	return s.ruleRepo.FindRuleByID(ctx, tenantID, ruleID)
}

// ListRules retrieves a page of rules.
func (s *ruleService) ListRules(ctx context.Context, tenantID string, limit int, offset int) ([]domain.PostingRule, error) {
	return s.ruleRepo.ListRules(ctx, tenantID, limit, offset)
}

// DeactivateRule marks a rule inactive.
func (s *ruleService) DeactivateRule(ctx context.Context, tenantID string, ruleID string, userID string) error {
	return s.ruleRepo.DeactivateRule(ctx, tenantID, ruleID, userID, time.Now().UTC())
}

// Resolve returns the ordered candidate rules for an event selector within
// a fiscal year. Order: priority descending, then conditioned rules before
// unconditioned ones, then rule code. Deterministic by construction so the
// same event always resolves the same way.
func (s *ruleService) Resolve(ctx context.Context, tenantID string, sourceType string, triggerEvent string, fiscalYear string) ([]domain.PostingRule, error) {
	rules, err := s.ruleRepo.FindMatchingRules(ctx, tenantID, sourceType, triggerEvent, fiscalYear)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: tenant %s, selector (%s, %s), fiscal year %s", apperrors.ErrNoMatchingRule, tenantID, sourceType, triggerEvent, fiscalYear)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		if rules[i].HasCondition() != rules[j].HasCondition() {
			return rules[i].HasCondition()
		}
		return rules[i].RuleCode < rules[j].RuleCode
	})
	return rules, nil
}
