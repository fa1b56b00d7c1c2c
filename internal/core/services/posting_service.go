package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/core/expr"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
	"github.com/karobooks/ledger_engine/internal/utils/accounting"
)

// postingService turns business events into posted journal entries.
type postingService struct {
	entryRepo   portsrepo.EntryRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	ruleSvc     portssvc.RuleSvcFacade
	tenantSvc   portssvc.TenantSvcFacade
	evaluator   portssvc.EvaluatorSvcFacade
}

// NewPostingService creates a new PostingService.
func NewPostingService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, ruleSvc portssvc.RuleSvcFacade, tenantSvc portssvc.TenantSvcFacade, evaluator portssvc.EvaluatorSvcFacade) portssvc.PostingSvcFacade {
	return &postingService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		ruleSvc:     ruleSvc,
		tenantSvc:   tenantSvc,
		evaluator:   evaluator,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// PostEvent selects a posting rule for the event, expands it into a balanced
// entry, and commits it atomically. Replaying an idempotency key returns the
// previously posted entry unchanged.
func (s *postingService) PostEvent(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	return s.post(ctx, event, userID, nil)
}

// PostCorrectingEvent posts an event and stamps correctionOf on the
// resulting entry, linking it into the correction chain it amends.
func (s *postingService) PostCorrectingEvent(ctx context.Context, event domain.BusinessEvent, userID string, correctionOf string) (*domain.JournalEntry, error) {
	return s.post(ctx, event, userID, &correctionOf)
}

func (s *postingService) post(ctx context.Context, event domain.BusinessEvent, userID string, correctionOf *string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tenant, err := s.tenantSvc.GetTenantByID(ctx, event.TenantID)
	if err != nil {
		return nil, err
	}

	// Fast path for replays. The database unique index still backs this up
	// for the race where two replays arrive together.
	if event.IdempotencyKey != nil && *event.IdempotencyKey != "" {
		existing, err := s.entryRepo.FindEntryByIdempotencyKey(ctx, event.TenantID, *event.IdempotencyKey)
		if err == nil {
			logger.Info("Idempotent replay, returning existing entry", slog.String("tenant_id", event.TenantID), slog.String("entry_id", existing.EntryID))
			return s.withLines(ctx, existing)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	fiscalYear := accounting.FiscalYear(event.OccurredAt, tenant.FiscalYearStartMonth)
	candidates, err := s.ruleSvc.Resolve(ctx, event.TenantID, event.SourceType, event.TriggerEvent, fiscalYear)
	if err != nil {
		return nil, err
	}

	entry, rule, accountsByCode, err := s.expandFirstApplicable(ctx, candidates, event, logger)
	if err != nil {
		return nil, err
	}
	if entry.CurrencyCode == "" {
		entry.CurrencyCode = tenant.DefaultCurrencyCode
	}

	now := time.Now().UTC()
	finalizeEntry(entry, userID, now)
	entry.Status = domain.Posted
	entry.CorrectionOf = correctionOf

	normalSides := make(map[string]domain.EntrySide, len(accountsByCode))
	for _, account := range accountsByCode {
		normalSides[account.AccountID] = account.NormalSide
	}
	balanceChanges, err := accounting.NetBalanceChanges(entry.Lines, normalSides)
	if err != nil {
		return nil, err
	}

	periodKey := accounting.FiscalPeriodKey(event.OccurredAt, tenant.FiscalYearStartMonth)
	created, err := s.entryRepo.SaveEntry(ctx, *entry, entry.Lines, balanceChanges, periodKey)
	if err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("tenant_id", event.TenantID), slog.String("rule_code", rule.RuleCode))
		return nil, err
	}
	if !created {
		// Lost the idempotency race; the winner's entry is the answer. The
		// insert only skips on a key conflict, so a missing key here means
		// the repository broke that contract.
		if event.IdempotencyKey == nil || *event.IdempotencyKey == "" {
			return nil, apperrors.NewAppError(500, "entry insert conflicted without an idempotency key", nil)
		}
		existing, err := s.entryRepo.FindEntryByIdempotencyKey(ctx, event.TenantID, *event.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		logger.Info("Idempotent replay resolved by unique index", slog.String("tenant_id", event.TenantID), slog.String("entry_id", existing.EntryID))
		return s.withLines(ctx, existing)
	}

	logger.Info("Journal entry posted",
		slog.String("tenant_id", event.TenantID),
		slog.String("entry_id", entry.EntryID),
		slog.String("rule_code", rule.RuleCode),
		slog.String("amount", entry.Amount.String()),
		slog.Int("line_count", len(entry.Lines)),
	)
	return entry, nil
}

// expandFirstApplicable walks the ordered candidates: the first rule whose
// condition holds and whose expansion succeeds produces the entry. A
// candidate whose condition fails to evaluate or whose expansion fails
// falls through to the next candidate; when every candidate is exhausted
// the last failure propagates, or ErrNoMatchingRule when none applied.
func (s *postingService) expandFirstApplicable(ctx context.Context, candidates []domain.PostingRule, event domain.BusinessEvent, logger *slog.Logger) (*domain.JournalEntry, *domain.PostingRule, map[string]domain.Account, error) {
	var lastErr error
	for i := range candidates {
		rule := &candidates[i]
		if rule.HasCondition() {
			parsed, err := expr.Parse(rule.Condition)
			if err != nil {
				// Registration validates conditions, so this is stored-data corruption.
				return nil, nil, nil, apperrors.NewAppError(500, "stored condition for rule "+rule.RuleCode+" fails to parse", err)
			}
			applies, err := parsed.EvalBool(event.Fields)
			if err != nil {
				if errors.Is(err, expr.ErrUndefinedField) {
					lastErr = fmt.Errorf("%w: rule %s condition: %v", apperrors.ErrMissingRequiredField, rule.RuleCode, err)
				} else {
					lastErr = fmt.Errorf("%w: rule %s condition: %v", apperrors.ErrAmountEvaluation, rule.RuleCode, err)
				}
				logger.Warn("Candidate rule condition failed to evaluate, trying next candidate",
					slog.String("rule_code", rule.RuleCode), slog.String("error", err.Error()))
				continue
			}
			if !applies {
				continue
			}
		}

		entry, accountsByCode, err := s.expandRule(ctx, rule, event)
		if err != nil {
			lastErr = err
			if errors.Is(err, apperrors.ErrUnbalancedEntry) {
				logger.Error("Rule expansion produced an unbalanced entry",
					slog.String("rule_code", rule.RuleCode), slog.String("error", err.Error()))
			} else {
				logger.Warn("Candidate rule expansion failed, trying next candidate",
					slog.String("rule_code", rule.RuleCode), slog.String("error", err.Error()))
			}
			continue
		}
		return entry, rule, accountsByCode, nil
	}
	if lastErr != nil {
		return nil, nil, nil, lastErr
	}
	return nil, nil, nil, fmt.Errorf("%w: no candidate condition matched the event", apperrors.ErrNoMatchingRule)
}

// expandRule resolves and checks the rule's accounts and expands it into a
// draft entry.
func (s *postingService) expandRule(ctx context.Context, rule *domain.PostingRule, event domain.BusinessEvent) (*domain.JournalEntry, map[string]domain.Account, error) {
	codes, err := s.evaluator.RequiredAccountCodes(*rule, event)
	if err != nil {
		return nil, nil, err
	}
	accountsByCode, err := s.accountRepo.FindAccountsByCodes(ctx, event.TenantID, codes)
	if err != nil {
		return nil, nil, err
	}
	for _, code := range codes {
		account, ok := accountsByCode[code]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q (rule %s)", apperrors.ErrUnknownAccountCode, code, rule.RuleCode)
		}
		if !account.IsActive {
			return nil, nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrInvalidAccountReference, code)
		}
	}
	entry, err := s.evaluator.Expand(*rule, event, accountsByCode)
	if err != nil {
		return nil, nil, err
	}
	return entry, accountsByCode, nil
}

// finalizeEntry assigns identifiers and audit stamps to a draft entry.
func finalizeEntry(entry *domain.JournalEntry, userID string, now time.Time) {
	entry.EntryID = uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	entry.AuditFields = audit
	for i := range entry.Lines {
		entry.Lines[i].LineID = uuid.NewString()
		entry.Lines[i].EntryID = entry.EntryID
		entry.Lines[i].AuditFields = audit
	}
}

// withLines loads and attaches an entry's lines.
func (s *postingService) withLines(ctx context.Context, entry *domain.JournalEntry) (*domain.JournalEntry, error) {
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *postingService) GetEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	return s.withLines(ctx, entry)
}

// ListEntries retrieves a token-paginated page of entries.
func (s *postingService) ListEntries(ctx context.Context, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	filter := domain.EntryFilter{
		FromDate:   params.FromDate,
		ToDate:     params.ToDate,
		SourceType: params.SourceType,
		SourceID:   params.SourceID,
	}
	entries, nextToken, err := s.entryRepo.ListEntries(ctx, tenantID, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// ListLinesByAccount retrieves a token-paginated page of an account's
// posted lines.
func (s *postingService) ListLinesByAccount(ctx context.Context, tenantID string, accountID string, limit int, nextToken *string) (*dto.ListLinesResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, err
	}
	lines, nextTokenOut, err := s.entryRepo.ListLinesByAccountID(ctx, tenantID, accountID, limit, nextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListLinesResponse{
		Lines:     dto.ToEntryLineResponses(lines),
		NextToken: nextTokenOut,
	}, nil
}
