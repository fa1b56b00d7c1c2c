package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// CorrectionSvcFacade creates linked reversing/correcting entries. History
// is never edited in place: fixes are new entries referencing their
// predecessor through correctionOf.
type CorrectionSvcFacade interface {
	// ReverseEntry produces and posts a mirror entry (sides swapped, same
	// amounts) tagged with correctionOf, and stamps reversedBy on the
	// original, atomically.
	ReverseEntry(ctx context.Context, tenantID string, entryID string, reason string, userID string) (*domain.JournalEntry, error)

	// AmendEntry reverses the original and posts the corrected event
	// through the normal writer path.
	AmendEntry(ctx context.Context, tenantID string, entryID string, correctedEvent domain.BusinessEvent, reason string, userID string) (*domain.JournalEntry, error)

	// GetCorrectionChain walks the correction links from the given entry,
	// oldest first. A revisited entry yields ErrCorrectionChainCycle.
	GetCorrectionChain(ctx context.Context, tenantID string, entryID string) ([]domain.JournalEntry, error)
}
