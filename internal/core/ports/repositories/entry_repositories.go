package repositories

import (
	"context"
	"time"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryReader defines read operations for journal entries and their lines.
type EntryReader interface {
	// FindEntryByID retrieves an entry header by id.
	FindEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// FindEntryByIdempotencyKey retrieves the posted entry recorded under a
	// tenant's idempotency key, or ErrNotFound.
	FindEntryByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines in position order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error)

	// FindCorrections retrieves the entries that declare the given entry as
	// their correction target.
	FindCorrections(ctx context.Context, tenantID string, entryID string) ([]domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated list of entries filtered by
	// date range and source reference.
	ListEntries(ctx context.Context, tenantID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// ListLinesByAccountID retrieves a token-paginated list of posted lines
	// for one account.
	ListLinesByAccountID(ctx context.Context, tenantID string, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error)
}

// EntryWriter defines the atomic commit operations of the ledger writer.
type EntryWriter interface {
	// SaveEntry persists an entry, its lines, the per-account balance
	// deltas, the period-balance upsert and the balance-apply mark as a
	// single database transaction. When the entry carries an idempotency
	// key that already exists for the tenant, nothing is written and
	// created is false; the caller fetches and returns the existing entry.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, balanceChanges map[string]decimal.Decimal, periodKey string) (created bool, err error)

	// SaveReversalEntry persists a reversing entry exactly like SaveEntry
	// and, in the same transaction, stamps reversed_by on the original.
	SaveReversalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, balanceChanges map[string]decimal.Decimal, periodKey string, originalEntryID string, userID string, now time.Time) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
