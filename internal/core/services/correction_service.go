package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/middleware"
	"github.com/karobooks/ledger_engine/internal/utils/accounting"
)

// correctionChainLimit bounds chain walks as a second line of defence after
// the visited set.
const correctionChainLimit = 256

// correctionService creates linked reversing and correcting entries. Posted
// history is immutable; every fix is a new entry referencing its
// predecessor.
type correctionService struct {
	entryRepo   portsrepo.EntryRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	tenantSvc   portssvc.TenantSvcFacade
	postingSvc  portssvc.PostingSvcFacade
}

// NewCorrectionService creates a new CorrectionService.
func NewCorrectionService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, tenantSvc portssvc.TenantSvcFacade, postingSvc portssvc.PostingSvcFacade) portssvc.CorrectionSvcFacade {
	return &correctionService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		tenantSvc:   tenantSvc,
		postingSvc:  postingSvc,
	}
}

var _ portssvc.CorrectionSvcFacade = (*correctionService)(nil)

// ReverseEntry posts a mirror of the original entry (sides swapped, same
// amounts) tagged with correctionOf, and stamps reversedBy on the original,
// in one transaction. The derived idempotency key plus the reversed_by
// guard make a double reversal impossible.
func (s *correctionService) ReverseEntry(ctx context.Context, tenantID string, entryID string, reason string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tenant, err := s.tenantSvc.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	original, err := s.entryRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s is not posted", apperrors.ErrConflict, entryID)
	}
	if original.ReversedBy != nil {
		return nil, fmt.Errorf("%w: entry %s is already reversed by %s", apperrors.ErrConflict, entryID, *original.ReversedBy)
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	idempotencyKey := "reversal-of-" + entryID
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	reversal := domain.JournalEntry{
		EntryID:        uuid.NewString(),
		TenantID:       tenantID,
		EntryDate:      now,
		SourceType:     original.SourceType,
		SourceID:       original.SourceID,
		IdempotencyKey: &idempotencyKey,
		RuleCode:       original.RuleCode,
		CorrectionOf:   &original.EntryID,
		Status:         domain.Posted,
		Narration:      "Reversal of " + original.EntryID + ": " + reason,
		CurrencyCode:   original.CurrencyCode,
		Amount:         original.Amount,
		AuditFields:    audit,
	}

	reversal.Lines = make([]domain.EntryLine, len(originalLines))
	accountIDSet := map[string]struct{}{}
	for i, line := range originalLines {
		side := domain.Credit
		if line.Side == domain.Credit {
			side = domain.Debit
		}
		reversal.Lines[i] = domain.EntryLine{
			LineID:        uuid.NewString(),
			EntryID:       reversal.EntryID,
			Position:      line.Position,
			AccountID:     line.AccountID,
			Side:          side,
			Amount:        line.Amount,
			Narration:     line.Narration,
			SubledgerType: line.SubledgerType,
			SubledgerID:   line.SubledgerID,
			AuditFields:   audit,
		}
		accountIDSet[line.AccountID] = struct{}{}
	}

	accountIDs := make([]string, 0, len(accountIDSet))
	for id := range accountIDSet {
		accountIDs = append(accountIDs, id)
	}
	accountsByID, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return nil, err
	}
	normalSides := make(map[string]domain.EntrySide, len(accountsByID))
	for id, account := range accountsByID {
		normalSides[id] = account.NormalSide
	}
	balanceChanges, err := accounting.NetBalanceChanges(reversal.Lines, normalSides)
	if err != nil {
		return nil, err
	}

	periodKey := accounting.FiscalPeriodKey(now, tenant.FiscalYearStartMonth)
	if err := s.entryRepo.SaveReversalEntry(ctx, reversal, reversal.Lines, balanceChanges, periodKey, original.EntryID, userID, now); err != nil {
		logger.Error("Failed to save reversal entry", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
		return nil, err
	}

	logger.Info("Entry reversed",
		slog.String("tenant_id", tenantID),
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversal_entry_id", reversal.EntryID),
	)
	return &reversal, nil
}

// AmendEntry reverses the original and posts the corrected event through the
// normal writer path, linked into the same correction chain. The two steps
// are individually atomic and individually idempotent; a crash between them
// leaves a reversed entry awaiting its replacement, and retrying completes
// the amendment.
func (s *correctionService) AmendEntry(ctx context.Context, tenantID string, entryID string, correctedEvent domain.BusinessEvent, reason string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	correctedEvent.TenantID = tenantID
	if correctedEvent.IdempotencyKey == nil || *correctedEvent.IdempotencyKey == "" {
		key := "amendment-of-" + entryID
		correctedEvent.IdempotencyKey = &key
	}

	if _, err := s.ReverseEntry(ctx, tenantID, entryID, reason, userID); err != nil {
		// A replay after a partial amendment finds the original already
		// reversed; the replacement post below is what still needs doing.
		if original, findErr := s.entryRepo.FindEntryByID(ctx, tenantID, entryID); findErr == nil && original.ReversedBy != nil {
			logger.Info("Amendment replay: original already reversed", slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
		} else {
			return nil, err
		}
	}

	replacement, err := s.postingSvc.PostCorrectingEvent(ctx, correctedEvent, userID, entryID)
	if err != nil {
		logger.Error("Failed to post replacement entry for amendment", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
		return nil, err
	}

	logger.Info("Entry amended",
		slog.String("tenant_id", tenantID),
		slog.String("original_entry_id", entryID),
		slog.String("replacement_entry_id", replacement.EntryID),
	)
	return replacement, nil
}

// GetCorrectionChain returns the full correction chain containing the given
// entry, oldest first: the root original followed by every reversal and
// replacement, breadth first. A revisited entry means the stored links form
// a cycle and yields ErrCorrectionChainCycle.
func (s *correctionService) GetCorrectionChain(ctx context.Context, tenantID string, entryID string) ([]domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	// Walk up to the root original.
	visited := map[string]struct{}{entry.EntryID: {}}
	root := entry
	for root.CorrectionOf != nil {
		parentID := *root.CorrectionOf
		if _, seen := visited[parentID]; seen {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrCorrectionChainCycle, parentID)
		}
		visited[parentID] = struct{}{}
		parent, err := s.entryRepo.FindEntryByID(ctx, tenantID, parentID)
		if err != nil {
			return nil, fmt.Errorf("correction parent %s: %w", parentID, err)
		}
		root = parent
		if len(visited) > correctionChainLimit {
			return nil, fmt.Errorf("%w: chain exceeds %d entries", apperrors.ErrCorrectionChainCycle, correctionChainLimit)
		}
	}

	// Walk down from the root collecting corrections, oldest first.
	chain := []domain.JournalEntry{}
	seen := map[string]struct{}{}
	queue := []domain.JournalEntry{*root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, dup := seen[current.EntryID]; dup {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrCorrectionChainCycle, current.EntryID)
		}
		seen[current.EntryID] = struct{}{}
		chain = append(chain, current)
		if len(chain) > correctionChainLimit {
			return nil, fmt.Errorf("%w: chain exceeds %d entries", apperrors.ErrCorrectionChainCycle, correctionChainLimit)
		}

		corrections, err := s.entryRepo.FindCorrections(ctx, tenantID, current.EntryID)
		if err != nil {
			return nil, err
		}
		queue = append(queue, corrections...)
	}
	return chain, nil
}
