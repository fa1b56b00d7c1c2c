package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	"github.com/karobooks/ledger_engine/internal/models"
	"github.com/karobooks/ledger_engine/internal/utils/mapping"
)

const ruleColumns = `rule_id, tenant_id, rule_code, fiscal_year, source_type, trigger_event, priority, condition, is_active, created_at, created_by, last_updated_at, last_updated_by`

const ruleLineColumns = `rule_line_id, rule_id, position, account_code, account_field, side, amount_expr, narration, subledger_field`

type PgxRuleRepository struct {
	BaseRepository
}

// newPgxRuleRepository creates a new repository for posting rule data.
func newPgxRuleRepository(pool *pgxpool.Pool) portsrepo.RuleRepositoryFacade {
	return &PgxRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RuleRepositoryFacade = (*PgxRuleRepository)(nil)

func scanRuleRow(row pgx.Row) (models.PostingRule, error) {
	var m models.PostingRule
	err := row.Scan(
		&m.RuleID,
		&m.TenantID,
		&m.RuleCode,
		&m.FiscalYear,
		&m.SourceType,
		&m.TriggerEvent,
		&m.Priority,
		&m.Condition,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanRuleLineRow(row pgx.Row) (models.PostingRuleLine, error) {
	var m models.PostingRuleLine
	err := row.Scan(
		&m.RuleLineID,
		&m.RuleID,
		&m.Position,
		&m.AccountCode,
		&m.AccountField,
		&m.Side,
		&m.AmountExpr,
		&m.Narration,
		&m.SubledgerField,
	)
	return m, err
}

// SaveRule persists a rule header and its line templates atomically.
func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule domain.PostingRule) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelPostingRule(rule)
	headerQuery := `
		INSERT INTO posting_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.RuleID,
		m.TenantID,
		m.RuleCode,
		m.FiscalYear,
		m.SourceType,
		m.TriggerEvent,
		m.Priority,
		m.Condition,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rule %s already exists for fiscal year %s", apperrors.ErrDuplicate, m.RuleCode, m.FiscalYear)
		}
		return apperrors.NewAppError(500, "failed to insert posting rule "+m.RuleID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO posting_rule_lines (` + ruleLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, line := range rule.Lines {
		ml := mapping.ToModelRuleLine(uuid.NewString(), m.RuleID, line)
		batch.Queue(lineQuery,
			ml.RuleLineID,
			ml.RuleID,
			ml.Position,
			ml.AccountCode,
			ml.AccountField,
			ml.Side,
			ml.AmountExpr,
			ml.Narration,
			ml.SubledgerField,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert rule lines for rule "+m.RuleID, err)
	}

	return r.Commit(ctx, tx)
}

// FindRuleByID retrieves a rule with its line templates by id.
func (r *PgxRuleRepository) FindRuleByID(ctx context.Context, tenantID string, ruleID string) (*domain.PostingRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM posting_rules WHERE tenant_id = $1 AND rule_id = $2;`
	m, err := scanRuleRow(r.Pool.QueryRow(ctx, query, tenantID, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find posting rule "+ruleID, err)
	}

	lines, err := r.findLinesByRuleIDs(ctx, []string{m.RuleID})
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainPostingRule(m, lines[m.RuleID])
	return &d, nil
}

// FindRuleByCode retrieves a rule by code within a fiscal year.
func (r *PgxRuleRepository) FindRuleByCode(ctx context.Context, tenantID string, ruleCode string, fiscalYear string) (*domain.PostingRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM posting_rules WHERE tenant_id = $1 AND rule_code = $2 AND fiscal_year = $3;`
	m, err := scanRuleRow(r.Pool.QueryRow(ctx, query, tenantID, ruleCode, fiscalYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find posting rule by code "+ruleCode, err)
	}

	lines, err := r.findLinesByRuleIDs(ctx, []string{m.RuleID})
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainPostingRule(m, lines[m.RuleID])
	return &d, nil
}

// FindMatchingRules retrieves the active rules matching (sourceType,
// triggerEvent) for a fiscal year, ordered by priority descending with rule
// code as the deterministic tie-breaker.
func (r *PgxRuleRepository) FindMatchingRules(ctx context.Context, tenantID string, sourceType string, triggerEvent string, fiscalYear string) ([]domain.PostingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM posting_rules
		WHERE tenant_id = $1 AND source_type = $2 AND trigger_event = $3 AND fiscal_year = $4 AND is_active
		ORDER BY priority DESC, rule_code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, sourceType, triggerEvent, fiscalYear)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matching rules for tenant "+tenantID, err)
	}
	defer rows.Close()

	headers := []models.PostingRule{}
	ruleIDs := []string{}
	for rows.Next() {
		m, err := scanRuleRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan posting rule row", err)
		}
		headers = append(headers, m)
		ruleIDs = append(ruleIDs, m.RuleID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating posting rule rows", err)
	}

	linesByRule, err := r.findLinesByRuleIDs(ctx, ruleIDs)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.PostingRule, len(headers))
	for i, m := range headers {
		rules[i] = mapping.ToDomainPostingRule(m, linesByRule[m.RuleID])
	}
	return rules, nil
}

// ListRules retrieves a page of rules for a tenant with lines populated.
func (r *PgxRuleRepository) ListRules(ctx context.Context, tenantID string, limit int, offset int) ([]domain.PostingRule, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + ruleColumns + `
		FROM posting_rules
		WHERE tenant_id = $1
		ORDER BY fiscal_year DESC, rule_code
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list posting rules for tenant "+tenantID, err)
	}
	defer rows.Close()

	headers := []models.PostingRule{}
	ruleIDs := []string{}
	for rows.Next() {
		m, err := scanRuleRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan posting rule row", err)
		}
		headers = append(headers, m)
		ruleIDs = append(ruleIDs, m.RuleID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating posting rule rows", err)
	}

	linesByRule, err := r.findLinesByRuleIDs(ctx, ruleIDs)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.PostingRule, len(headers))
	for i, m := range headers {
		rules[i] = mapping.ToDomainPostingRule(m, linesByRule[m.RuleID])
	}
	return rules, nil
}

// DeactivateRule marks a rule inactive so the resolver stops considering it.
func (r *PgxRuleRepository) DeactivateRule(ctx context.Context, tenantID string, ruleID string, userID string, now time.Time) error {
	query := `
		UPDATE posting_rules
		SET is_active = FALSE,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE tenant_id = $1 AND rule_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, ruleID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate posting rule "+ruleID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// findLinesByRuleIDs loads line templates for a set of rules, grouped by
// rule id and ordered by position.
func (r *PgxRuleRepository) findLinesByRuleIDs(ctx context.Context, ruleIDs []string) (map[string][]models.PostingRuleLine, error) {
	result := make(map[string][]models.PostingRuleLine, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + ruleLineColumns + ` FROM posting_rule_lines WHERE rule_id = ANY($1) ORDER BY rule_id, position;`
	rows, err := r.Pool.Query(ctx, query, ruleIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query rule lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanRuleLineRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan rule line row", err)
		}
		result[m.RuleID] = append(result[m.RuleID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating rule line rows", err)
	}
	return result, nil
}
