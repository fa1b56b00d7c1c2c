package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade defines operations on a tenant's chart of accounts.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error)
	GetAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, limit int, offset int) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, tenantID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error

	// RecomputeBalance independently derives an account's balance from its
	// opening balance plus all posted lines. Audit path only.
	RecomputeBalance(ctx context.Context, tenantID string, accountID string) (decimal.Decimal, error)

	// ReconcileControlAccounts checks every control account's cached balance
	// against the sum of its subledger-linked lines and reports drift.
	// Idempotent, runnable on demand, never part of the posting hot path.
	ReconcileControlAccounts(ctx context.Context, tenantID string) ([]domain.ControlAccountDrift, error)
}
