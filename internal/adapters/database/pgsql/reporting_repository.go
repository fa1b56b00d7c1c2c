package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for reporting reads.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepositoryFacade = (*PgxReportingRepository)(nil)

// GetTrialBalanceRows returns one row per active account with the cached
// balance folded into the debit or credit column by the account's normal
// side. A negative cached balance flips to the opposite column.
func (r *PgxReportingRepository) GetTrialBalanceRows(ctx context.Context, tenantID string) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT account_id, code, name, account_type, normal_side, balance
		FROM accounts
		WHERE tenant_id = $1 AND is_active
		ORDER BY code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance rows for tenant "+tenantID, err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var normalSide domain.EntrySide
		var balance decimal.Decimal
		if err := rows.Scan(&row.AccountID, &row.Code, &row.AccountName, &row.AccountType, &normalSide, &balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}

		column := normalSide
		if balance.IsNegative() {
			balance = balance.Neg()
			if normalSide == domain.Debit {
				column = domain.Credit
			} else {
				column = domain.Debit
			}
		}
		if column == domain.Debit {
			row.Debit = balance
			row.Credit = decimal.Zero
		} else {
			row.Debit = decimal.Zero
			row.Credit = balance
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}
