package pgsql

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	"github.com/karobooks/ledger_engine/internal/models"
	"github.com/karobooks/ledger_engine/internal/utils/accounting"
	"github.com/karobooks/ledger_engine/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for cached balance data
// and the balance recovery path.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryFacade {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

// GetPeriodBalance retrieves one account-period aggregate.
func (r *PgxBalanceRepository) GetPeriodBalance(ctx context.Context, tenantID string, accountID string, periodKey string) (*domain.AccountPeriodBalance, error) {
	query := `
		SELECT tenant_id, account_id, period_key, opening_balance, movement, closing_balance, last_entry_at
		FROM account_period_balances
		WHERE tenant_id = $1 AND account_id = $2 AND period_key = $3;
	`
	var m models.AccountPeriodBalance
	err := r.Pool.QueryRow(ctx, query, tenantID, accountID, periodKey).Scan(
		&m.TenantID,
		&m.AccountID,
		&m.PeriodKey,
		&m.OpeningBalance,
		&m.Movement,
		&m.ClosingBalance,
		&m.LastEntryAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find period balance for account "+accountID, err)
	}
	d := mapping.ToDomainPeriodBalance(m)
	return &d, nil
}

// ListPeriodBalances retrieves all period aggregates for an account in
// period order. Period keys are zero-padded so lexical order is period order.
func (r *PgxBalanceRepository) ListPeriodBalances(ctx context.Context, tenantID string, accountID string) ([]domain.AccountPeriodBalance, error) {
	query := `
		SELECT tenant_id, account_id, period_key, opening_balance, movement, closing_balance, last_entry_at
		FROM account_period_balances
		WHERE tenant_id = $1 AND account_id = $2
		ORDER BY period_key;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query period balances for account "+accountID, err)
	}
	defer rows.Close()

	balances := []domain.AccountPeriodBalance{}
	for rows.Next() {
		var m models.AccountPeriodBalance
		if err := rows.Scan(
			&m.TenantID,
			&m.AccountID,
			&m.PeriodKey,
			&m.OpeningBalance,
			&m.Movement,
			&m.ClosingBalance,
			&m.LastEntryAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan period balance row", err)
		}
		balances = append(balances, mapping.ToDomainPeriodBalance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating period balance rows", err)
	}
	return balances, nil
}

// SumPostedMovement recomputes an account's net signed movement from its
// posted lines, bypassing every cache.
func (r *PgxBalanceRepository) SumPostedMovement(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN l.side = a.normal_side THEN l.amount ELSE -l.amount END), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE e.tenant_id = $1 AND l.account_id = $2 AND e.status = 'POSTED';
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum posted movement for account "+accountID, err)
	}
	return total, nil
}

// SumSubledgerMovement recomputes the net signed movement counting only
// lines that carry subledger linkage. Used to detect control account drift.
func (r *PgxBalanceRepository) SumSubledgerMovement(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN l.side = a.normal_side THEN l.amount ELSE -l.amount END), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE e.tenant_id = $1 AND l.account_id = $2 AND e.status = 'POSTED' AND l.subledger_id IS NOT NULL;
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum subledger movement for account "+accountID, err)
	}
	return total, nil
}

// FindUnappliedEntryIDs lists posted entries with no balance-apply mark.
func (r *PgxBalanceRepository) FindUnappliedEntryIDs(ctx context.Context, tenantID string) ([]string, error) {
	query := `
		SELECT e.entry_id
		FROM journal_entries e
		LEFT JOIN entry_balance_applies b ON e.tenant_id = b.tenant_id AND e.entry_id = b.entry_id
		WHERE e.tenant_id = $1 AND e.status = 'POSTED' AND b.entry_id IS NULL
		ORDER BY e.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unapplied entries for tenant "+tenantID, err)
	}
	defer rows.Close()

	entryIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan unapplied entry id", err)
		}
		entryIDs = append(entryIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating unapplied entry ids", err)
	}
	return entryIDs, nil
}

// ApplyEntryBalances applies a posted entry's balance effect if and only if
// no apply mark exists yet. The mark insert doubles as the mutual exclusion:
// whoever wins the ON CONFLICT race applies the balances, everyone else
// observes applied=false. Safe to call any number of times.
func (r *PgxBalanceRepository) ApplyEntryBalances(ctx context.Context, tenantID string, entryID string) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	markQuery := `
		INSERT INTO entry_balance_applies (tenant_id, entry_id, applied_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (tenant_id, entry_id) DO NOTHING;
	`
	cmdTag, err := tx.Exec(ctx, markQuery, tenantID, entryID)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to insert balance apply mark for entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	entryQuery := `SELECT entry_date, created_by FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2 AND status = 'POSTED';`
	var entry models.JournalEntry
	if err := tx.QueryRow(ctx, entryQuery, tenantID, entryID).Scan(&entry.EntryDate, &entry.CreatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrNotFound
		}
		return false, apperrors.NewAppError(500, "failed to load entry "+entryID+" for balance apply", err)
	}

	var fiscalStartMonth int
	if err := tx.QueryRow(ctx, `SELECT fiscal_year_start_month FROM tenants WHERE tenant_id = $1;`, tenantID).Scan(&fiscalStartMonth); err != nil {
		return false, apperrors.NewAppError(500, "failed to load tenant "+tenantID+" for balance apply", err)
	}
	periodKey := accounting.FiscalPeriodKey(entry.EntryDate, fiscalStartMonth)

	linesQuery := `SELECT ` + entryLineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY position;`
	lineRows, err := tx.Query(ctx, linesQuery, entryID)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	modelLines := []models.EntryLine{}
	for lineRows.Next() {
		m, err := scanEntryLineRow(lineRows)
		if err != nil {
			lineRows.Close()
			return false, apperrors.NewAppError(500, "failed to scan entry line row for entry "+entryID, err)
		}
		modelLines = append(modelLines, m)
	}
	lineRows.Close()
	if err := lineRows.Err(); err != nil {
		return false, apperrors.NewAppError(500, "error iterating entry line rows for entry "+entryID, err)
	}
	lines := mapping.ToDomainEntryLineSlice(modelLines)

	accountIDSet := map[string]struct{}{}
	for _, l := range lines {
		accountIDSet[l.AccountID] = struct{}{}
	}
	accountIDs := make([]string, 0, len(accountIDSet))
	for id := range accountIDSet {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	lockedAccounts, err := findAccountsByIDsForUpdate(ctx, tx, tenantID, accountIDs)
	if err != nil {
		return false, err
	}

	normalSides := make(map[string]domain.EntrySide, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		normalSides[id] = domain.EntrySide(acc.NormalSide)
	}
	changes, err := accounting.NetBalanceChanges(lines, normalSides)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to compute balance changes for entry "+entryID, err)
	}

	now := entry.EntryDate
	if err := applyBalanceChangesInTx(ctx, tx, tenantID, changes, entry.CreatedBy, now); err != nil {
		return false, err
	}

	periodQuery := `
		INSERT INTO account_period_balances (tenant_id, account_id, period_key, opening_balance, movement, closing_balance, last_entry_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, account_id, period_key) DO UPDATE
		SET movement = account_period_balances.movement + EXCLUDED.movement,
		    closing_balance = account_period_balances.closing_balance + EXCLUDED.movement,
		    last_entry_at = GREATEST(account_period_balances.last_entry_at, EXCLUDED.last_entry_at);
	`
	batch := &pgx.Batch{}
	for _, accountID := range accountIDs {
		delta, ok := changes[accountID]
		if !ok {
			continue
		}
		opening := lockedAccounts[accountID].Balance
		batch.Queue(periodQuery, tenantID, accountID, periodKey, opening, delta, opening.Add(delta), entry.EntryDate)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return false, apperrors.NewAppError(500, "failed to upsert period balances for entry "+entryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}
