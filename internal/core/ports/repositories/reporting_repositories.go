package repositories

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// ReportingReader defines read operations for reports over the engine's
// outputs. Reporting never mutates ledger state.
type ReportingReader interface {
	// GetTrialBalanceRows returns one row per active account with the
	// cached balance folded into debit/credit columns by normal side.
	GetTrialBalanceRows(ctx context.Context, tenantID string) ([]domain.TrialBalanceRow, error)
}

// ReportingRepositoryFacade combines reporting repository interfaces.
type ReportingRepositoryFacade interface {
	ReportingReader
}
