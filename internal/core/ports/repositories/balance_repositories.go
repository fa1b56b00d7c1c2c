package repositories

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceReader defines read operations over cached balances and the raw
// posted lines they summarize.
type BalanceReader interface {
	// GetPeriodBalance retrieves one account-period aggregate.
	GetPeriodBalance(ctx context.Context, tenantID string, accountID string, periodKey string) (*domain.AccountPeriodBalance, error)

	// ListPeriodBalances retrieves all period aggregates for an account in
	// period order.
	ListPeriodBalances(ctx context.Context, tenantID string, accountID string) ([]domain.AccountPeriodBalance, error)

	// SumPostedMovement independently recomputes an account's net signed
	// movement from its posted lines. Audit/reconciliation path only; the
	// hot path reads the cached balance.
	SumPostedMovement(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error)

	// SumSubledgerMovement recomputes the net signed movement of a control
	// account counting only lines that carry subledger linkage.
	SumSubledgerMovement(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error)

	// FindUnappliedEntryIDs lists posted entries that have no balance-apply
	// mark, i.e. entries whose balance effect may have been lost to a crash.
	FindUnappliedEntryIDs(ctx context.Context, tenantID string) ([]string, error)
}

// BalanceWriter defines the recovery-path write operation of the balance
// maintainer. The normal path applies balances inside EntryWriter.SaveEntry.
type BalanceWriter interface {
	// ApplyEntryBalances applies a posted entry's balance effect if and only
	// if no apply mark exists yet, atomically. Returns false when the entry
	// was already applied. Safe to call any number of times.
	ApplyEntryBalances(ctx context.Context, tenantID string, entryID string) (applied bool, err error)
}

// BalanceRepositoryFacade combines balance repository interfaces.
type BalanceRepositoryFacade interface {
	BalanceReader
	BalanceWriter
}
