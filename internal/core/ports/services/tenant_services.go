package services

import (
	"context"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/dto"
)

// TenantSvcFacade defines operations on the engine's tenancy registry.
type TenantSvcFacade interface {
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error)
	GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)
	ListTenants(ctx context.Context, limit int, offset int) ([]domain.Tenant, error)
	UpdateTenant(ctx context.Context, tenantID string, req dto.UpdateTenantRequest, userID string) (*domain.Tenant, error)
}
