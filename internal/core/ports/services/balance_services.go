package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceSvcFacade is the read and recovery surface of the balance
// maintainer. The write path runs inside the ledger writer's commit.
type BalanceSvcFacade interface {
	// GetAccountBalance returns an account's cached current balance.
	GetAccountBalance(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error)

	// GetPeriodBalance returns the aggregate for one fiscal period, open or
	// closed.
	GetPeriodBalance(ctx context.Context, tenantID string, accountID string, periodKey string) (*domain.AccountPeriodBalance, error)

	// ListPeriodBalances returns all period aggregates for an account.
	ListPeriodBalances(ctx context.Context, tenantID string, accountID string) ([]domain.AccountPeriodBalance, error)

	// ReapplyUnapplied applies balance effects for posted entries that have
	// no apply mark (crash recovery). Idempotent; returns how many entries
	// were applied.
	ReapplyUnapplied(ctx context.Context, tenantID string) (int, error)
}
