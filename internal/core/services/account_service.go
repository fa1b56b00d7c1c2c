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
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
	"github.com/shopspring/decimal"
)

// accountService provides chart-of-accounts operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	balanceRepo portsrepo.BalanceRepositoryFacade
	tenantSvc   portssvc.TenantSvcFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, balanceRepo portsrepo.BalanceRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		tenantSvc:   tenantSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount validates and persists a new account in a tenant's chart.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenantSvc.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	accountType := domain.AccountType(req.AccountType)
	switch accountType {
	case domain.Asset, domain.Liability, domain.Equity, domain.Income, domain.Expense:
	default:
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	if req.IsControl && req.SubledgerType == "" {
		return nil, fmt.Errorf("%w: control accounts must declare a subledgerType", apperrors.ErrValidation)
	}
	if !req.IsControl && req.SubledgerType != "" {
		return nil, fmt.Errorf("%w: subledgerType requires isControl", apperrors.ErrValidation)
	}

	if req.ParentAccountID != "" {
		if err := s.validateParentDepth(ctx, tenantID, req.ParentAccountID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		TenantID:        tenantID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     accountType,
		NormalSide:      domain.NormalSideFor(accountType),
		CurrencyCode:    req.CurrencyCode,
		ParentAccountID: req.ParentAccountID,
		IsControl:       req.IsControl,
		SubledgerType:   req.SubledgerType,
		Description:     req.Description,
		IsActive:        true,
		OpeningBalance:  req.OpeningBalance,
		Balance:         req.OpeningBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("code", req.Code))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("tenant_id", tenantID), slog.String("code", account.Code))
	return &account, nil
}

// validateParentDepth checks the parent exists and that attaching a child
// under it stays within the depth bound. The walk also catches a corrupted
// parent cycle before it can grow.
func (s *accountService) validateParentDepth(ctx context.Context, tenantID string, parentAccountID string) error {
	depth := 1
	visited := map[string]struct{}{}
	currentID := parentAccountID
	for currentID != "" {
		if _, seen := visited[currentID]; seen {
			return fmt.Errorf("%w: account hierarchy contains a cycle at %s", apperrors.ErrConflict, currentID)
		}
		visited[currentID] = struct{}{}

		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, currentID)
		if err != nil {
			return fmt.Errorf("parent account %s: %w", currentID, err)
		}
		depth++
		if depth > domain.MaxAccountDepth {
			return fmt.Errorf("%w: account hierarchy exceeds maximum depth of %d", apperrors.ErrValidation, domain.MaxAccountDepth)
		}
		currentID = parent.ParentAccountID
	}
	return nil
}

// GetAccountByID retrieves an account.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
}

// GetAccountByCode retrieves an account by its tenant-unique code.
func (s *accountService) GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, tenantID, code)
}

// GetAccountsByCodes retrieves multiple accounts keyed by code.
func (s *accountService) GetAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, tenantID, codes)
}

// ListAccounts retrieves a page of accounts.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, tenantID, limit, offset)
}

// UpdateAccount updates an account's descriptive fields.
func (s *accountService) UpdateAccount(ctx context.Context, tenantID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != account.Name {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil && *req.Description != account.Description {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account inactive. History keeps referencing it;
// only new postings are rejected.
func (s *accountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	return s.accountRepo.DeactivateAccount(ctx, tenantID, accountID, userID, time.Now().UTC())
}

// RecomputeBalance independently derives an account's balance from its
// opening balance plus all posted lines, bypassing the cache.
func (s *accountService) RecomputeBalance(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	movement, err := s.balanceRepo.SumPostedMovement(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.OpeningBalance.Add(movement), nil
}

// ReconcileControlAccounts compares every control account's cached balance
// against opening balance plus the net of its subledger-linked lines, and
// reports any drift. Read only; fixing drift is a human decision.
func (s *accountService) ReconcileControlAccounts(ctx context.Context, tenantID string) ([]domain.ControlAccountDrift, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	controls, err := s.accountRepo.ListControlAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	drifts := []domain.ControlAccountDrift{}
	for _, account := range controls {
		subledgerMovement, err := s.balanceRepo.SumSubledgerMovement(ctx, tenantID, account.AccountID)
		if err != nil {
			return nil, err
		}
		recomputed := account.OpeningBalance.Add(subledgerMovement)
		drift := account.Balance.Sub(recomputed)
		if drift.IsZero() {
			continue
		}
		logger.Warn("Control account drift detected",
			slog.String("tenant_id", tenantID),
			slog.String("account_id", account.AccountID),
			slog.String("code", account.Code),
			slog.String("drift", drift.String()),
		)
		drifts = append(drifts, domain.ControlAccountDrift{
			AccountID:       account.AccountID,
			Code:            account.Code,
			CachedBalance:   account.Balance,
			RecomputedTotal: recomputed,
			Drift:           drift,
		})
	}
	return drifts, nil
}
