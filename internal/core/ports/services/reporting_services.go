package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// ReportingSvcFacade builds reports over the engine's outputs. Read only.
type ReportingSvcFacade interface {
	GetTrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalanceReport, error)
}
