package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql-backed repositories onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TenantRepo:    newPgxTenantRepository(dbPool),
		AccountRepo:   newPgxAccountRepository(dbPool),
		RuleRepo:      newPgxRuleRepository(dbPool),
		EntryRepo:     newPgxEntryRepository(dbPool),
		BalanceRepo:   newPgxBalanceRepository(dbPool),
		ReportingRepo: newPgxReportingRepository(dbPool),
	}
}
