package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/dto"
)

// EvaluatorSvcFacade expands a posting rule against an event payload into a
// draft entry. Expansion is a pure function over rule + payload: no side
// effects, safe to run on worker pools with no coordination.
type EvaluatorSvcFacade interface {
	// RequiredAccountCodes returns the account codes the rule will post to
	// for this event, resolving field-referenced codes from the payload.
	RequiredAccountCodes(rule domain.PostingRule, event domain.BusinessEvent) ([]string, error)

	// Expand produces a draft balanced entry from the rule and event.
	// accountsByCode must contain every code RequiredAccountCodes returned.
	Expand(rule domain.PostingRule, event domain.BusinessEvent, accountsByCode map[string]domain.Account) (*domain.JournalEntry, error)
}

// PostingSvcFacade is the ledger writer: it turns business events into
// posted, balanced, idempotent journal entries.
type PostingSvcFacade interface {
	// PostEvent selects and expands a posting rule for the event, validates
	// the draft, and commits it atomically. Replays of an idempotency key
	// return the previously posted entry unchanged.
	PostEvent(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error)

	// PostCorrectingEvent posts an event exactly like PostEvent and stamps
	// correctionOf on the resulting entry, linking it into the correction
	// chain of the entry it replaces.
	PostCorrectingEvent(ctx context.Context, event domain.BusinessEvent, userID string, correctionOf string) (*domain.JournalEntry, error)

	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated page of entries.
	ListEntries(ctx context.Context, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListLinesByAccount retrieves a token-paginated page of an account's
	// posted lines.
	ListLinesByAccount(ctx context.Context, tenantID string, accountID string, limit int, nextToken *string) (*dto.ListLinesResponse, error)
}
