package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	"github.com/karobooks/ledger_engine/internal/models"
	"github.com/karobooks/ledger_engine/internal/utils/accounting"
	"github.com/karobooks/ledger_engine/internal/utils/mapping"
	"github.com/karobooks/ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, tenant_id, entry_date, source_type, source_id, idempotency_key, rule_code, correction_of, reversed_by, status, narration, currency_code, amount, created_at, created_by, last_updated_at, last_updated_by`

const entryLineColumns = `line_id, entry_id, position, account_id, side, amount, narration, subledger_type, subledger_id, running_balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

func scanEntryRow(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.EntryDate,
		&m.SourceType,
		&m.SourceID,
		&m.IdempotencyKey,
		&m.RuleCode,
		&m.CorrectionOf,
		&m.ReversedBy,
		&m.Status,
		&m.Narration,
		&m.CurrencyCode,
		&m.Amount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanEntryLineRow(row pgx.Row) (models.EntryLine, error) {
	var m models.EntryLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.Position,
		&m.AccountID,
		&m.Side,
		&m.Amount,
		&m.Narration,
		&m.SubledgerType,
		&m.SubledgerID,
		&m.RunningBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveEntry persists an entry, its lines, the balance deltas, the period
// aggregates and the balance-apply mark as one database transaction. When
// the entry's idempotency key already exists for the tenant nothing is
// written and created is false.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, balanceChanges map[string]decimal.Decimal, periodKey string) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	created, err := insertEntryInTx(ctx, tx, entry, lines, balanceChanges, periodKey)
	if err != nil {
		return false, err
	}
	if !created {
		// Nothing was written; the rollback is a no-op.
		return false, nil
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// SaveReversalEntry persists a reversing entry and stamps reversed_by on the
// original in the same transaction. A concurrent reversal of the same
// original loses on the reversed_by guard and gets ErrConflict.
func (r *PgxEntryRepository) SaveReversalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, balanceChanges map[string]decimal.Decimal, periodKey string, originalEntryID string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	created, err := insertEntryInTx(ctx, tx, entry, lines, balanceChanges, periodKey)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: reversal for entry %s already recorded", apperrors.ErrConflict, originalEntryID)
	}

	guardQuery := `
		UPDATE journal_entries
		SET reversed_by = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE tenant_id = $1 AND entry_id = $2 AND reversed_by IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, guardQuery, entry.TenantID, originalEntryID, entry.EntryID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to stamp reversal on entry "+originalEntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is already reversed or missing", apperrors.ErrConflict, originalEntryID)
	}

	return r.Commit(ctx, tx)
}

// insertEntryInTx writes the entry header, locks and adjusts the touched
// accounts, inserts the lines with running balances, folds the movement into
// the period aggregate and records the balance-apply mark. Everything rides
// on the caller's transaction.
func insertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.EntryLine, balanceChanges map[string]decimal.Decimal, periodKey string) (bool, error) {
	m := mapping.ToModelJournalEntry(entry)

	// The partial unique index on (tenant_id, idempotency_key) turns a
	// duplicate post into a silent no-op instead of an error.
	headerQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (tenant_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING;
	`
	cmdTag, err := tx.Exec(ctx, headerQuery,
		m.EntryID,
		m.TenantID,
		m.EntryDate,
		m.SourceType,
		m.SourceID,
		m.IdempotencyKey,
		m.RuleCode,
		m.CorrectionOf,
		m.ReversedBy,
		m.Status,
		m.Narration,
		m.CurrencyCode,
		m.Amount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to insert journal entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	lockedAccounts, err := findAccountsByIDsForUpdate(ctx, tx, entry.TenantID, accountIDs)
	if err != nil {
		return false, err
	}

	if err := applyBalanceChangesInTx(ctx, tx, entry.TenantID, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
		return false, err
	}

	// Running balances start from the balance read under the lock, before
	// this entry's deltas were applied, and advance line by line.
	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accountID, locked := range lockedAccounts {
		runningBalances[accountID] = locked.Balance
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (` + entryLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	for _, line := range lines {
		locked, ok := lockedAccounts[line.AccountID]
		if !ok {
			return false, fmt.Errorf("%w: line account %s was not locked", apperrors.ErrInvalidAccountReference, line.AccountID)
		}
		signed, err := accounting.SignedAmount(line.Side, line.Amount, domain.EntrySide(locked.NormalSide))
		if err != nil {
			return false, apperrors.NewAppError(500, "failed to sign line amount for account "+line.AccountID, err)
		}
		newRunning := runningBalances[line.AccountID].Add(signed)
		runningBalances[line.AccountID] = newRunning

		ml := mapping.ToModelEntryLine(line)
		ml.RunningBalance = newRunning
		batch.Queue(lineQuery,
			ml.LineID,
			ml.EntryID,
			ml.Position,
			ml.AccountID,
			ml.Side,
			ml.Amount,
			ml.Narration,
			ml.SubledgerType,
			ml.SubledgerID,
			ml.RunningBalance,
			ml.CreatedAt,
			ml.CreatedBy,
			ml.LastUpdatedAt,
			ml.LastUpdatedBy,
		)
	}

	periodQuery := `
		INSERT INTO account_period_balances (tenant_id, account_id, period_key, opening_balance, movement, closing_balance, last_entry_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, account_id, period_key) DO UPDATE
		SET movement = account_period_balances.movement + EXCLUDED.movement,
		    closing_balance = account_period_balances.closing_balance + EXCLUDED.movement,
		    last_entry_at = GREATEST(account_period_balances.last_entry_at, EXCLUDED.last_entry_at);
	`
	for _, accountID := range accountIDs {
		delta := balanceChanges[accountID]
		opening := lockedAccounts[accountID].Balance
		batch.Queue(periodQuery,
			entry.TenantID,
			accountID,
			periodKey,
			opening,
			delta,
			opening.Add(delta),
			entry.CreatedAt,
		)
	}

	// The apply mark makes balance application observable: an entry without
	// one is a candidate for the recovery path.
	markQuery := `
		INSERT INTO entry_balance_applies (tenant_id, entry_id, applied_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, entry_id) DO NOTHING;
	`
	batch.Queue(markQuery, entry.TenantID, entry.EntryID, entry.CreatedAt)

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return false, apperrors.NewAppError(500, "failed to execute line batch for entry "+m.EntryID, err)
	}
	return true, nil
}

// FindEntryByID retrieves an entry header by id within a tenant.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`
	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+entryID, err)
	}
	d := mapping.ToDomainJournalEntry(m)
	return &d, nil
}

// FindEntryByIdempotencyKey retrieves the entry recorded under a tenant's
// idempotency key.
func (r *PgxEntryRepository) FindEntryByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND idempotency_key = $2;`
	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, tenantID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry by idempotency key", err)
	}
	d := mapping.ToDomainJournalEntry(m)
	return &d, nil
}

// FindLinesByEntryID retrieves an entry's lines in position order.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	query := `SELECT ` + entryLineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY position;`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.EntryLine{}
	for rows.Next() {
		m, err := scanEntryLineRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry line row for entry "+entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry line rows for entry "+entryID, err)
	}
	return mapping.ToDomainEntryLineSlice(lines), nil
}

// FindCorrections retrieves the entries that declare the given entry as
// their correction target, oldest first.
func (r *PgxEntryRepository) FindCorrections(ctx context.Context, tenantID string, entryID string) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND correction_of = $2 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, tenantID, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query corrections for entry "+entryID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}
	return entries, nil
}

// ListEntries retrieves a token-paginated list of entries, newest first,
// optionally narrowed by date range and source reference.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, tenantID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND entry_date >= $` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND entry_date <= $` + strconv.Itoa(len(args))
	}
	if filter.SourceType != "" {
		args = append(args, filter.SourceType)
		query += ` AND source_type = $` + strconv.Itoa(len(args))
	}
	if filter.SourceID != "" {
		args = append(args, filter.SourceID)
		query += ` AND source_id = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (entry_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY entry_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries for tenant "+tenantID, err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	results := entries
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		results = entries[:limit]
	}

	domainEntries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		domainEntries[i] = mapping.ToDomainJournalEntry(m)
	}
	return domainEntries, nextTokenVal, nil
}

// ListLinesByAccountID retrieves a token-paginated list of posted lines for
// one account, newest entry first.
func (r *PgxEntryRepository) ListLinesByAccountID(ctx context.Context, tenantID string, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT l.line_id, l.entry_id, l.position, l.account_id, l.side, l.amount, l.narration, l.subledger_type, l.subledger_id, l.running_balance, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, e.entry_date
		FROM journal_entry_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.tenant_id = $2 AND e.status = 'POSTED'
	`
	args := []interface{}{accountID, tenantID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (e.entry_date, l.created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY e.entry_date DESC, l.created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line      models.EntryLine
		entryDate time.Time
	}
	lines := []lineWithDate{}
	for rows.Next() {
		var m models.EntryLine
		var entryDate time.Time
		if err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.Position,
			&m.AccountID,
			&m.Side,
			&m.Amount,
			&m.Narration,
			&m.SubledgerType,
			&m.SubledgerID,
			&m.RunningBalance,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&entryDate,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry line row for account "+accountID, err)
		}
		lines = append(lines, lineWithDate{line: m, entryDate: entryDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := lines
	if len(lines) > limit {
		last := lines[limit-1]
		token := pagination.EncodeToken(last.entryDate, last.line.CreatedAt)
		nextTokenVal = &token
		results = lines[:limit]
	}

	domainLines := make([]domain.EntryLine, len(results))
	for i, l := range results {
		domainLines[i] = mapping.ToDomainEntryLine(l.line)
	}
	return domainLines, nextTokenVal, nil
}
