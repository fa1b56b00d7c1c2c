package services

import (
	"context"
	"log/slog"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/middleware"
	"github.com/shopspring/decimal"
)

// balanceService is the read and recovery surface of the balance maintainer.
type balanceService struct {
	balanceRepo portsrepo.BalanceRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(balanceRepo portsrepo.BalanceRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.BalanceSvcFacade {
	return &balanceService{balanceRepo: balanceRepo, accountRepo: accountRepo}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// GetAccountBalance returns an account's cached current balance.
func (s *balanceService) GetAccountBalance(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetPeriodBalance returns the aggregate for one fiscal period.
func (s *balanceService) GetPeriodBalance(ctx context.Context, tenantID string, accountID string, periodKey string) (*domain.AccountPeriodBalance, error) {
	return s.balanceRepo.GetPeriodBalance(ctx, tenantID, accountID, periodKey)
}

// ListPeriodBalances returns all period aggregates for an account.
func (s *balanceService) ListPeriodBalances(ctx context.Context, tenantID string, accountID string) ([]domain.AccountPeriodBalance, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, err
	}
	return s.balanceRepo.ListPeriodBalances(ctx, tenantID, accountID)
}

// ReapplyUnapplied applies balance effects for posted entries that carry no
// apply mark, typically after a crash between entry commit generations.
// Each entry is applied at most once regardless of concurrent runs.
func (s *balanceService) ReapplyUnapplied(ctx context.Context, tenantID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entryIDs, err := s.balanceRepo.FindUnappliedEntryIDs(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if len(entryIDs) == 0 {
		return 0, nil
	}

	applied := 0
	for _, entryID := range entryIDs {
		didApply, err := s.balanceRepo.ApplyEntryBalances(ctx, tenantID, entryID)
		if err != nil {
			logger.Error("Failed to reapply entry balances", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
			return applied, err
		}
		if didApply {
			applied++
		}
	}

	logger.Info("Balance recovery completed", slog.String("tenant_id", tenantID), slog.Int("candidates", len(entryIDs)), slog.Int("applied", applied))
	return applied, nil
}
