package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// defaultFiscalYearStartMonth is applied when a tenant doesn't declare one.
// April matches the common India/UK style fiscal year.
const defaultFiscalYearStartMonth = 4

// tenantService provides tenancy registry operations.
type tenantService struct {
	tenantRepo portsrepo.TenantRepositoryFacade
}

// NewTenantService creates a new TenantService.
func NewTenantService(tenantRepo portsrepo.TenantRepositoryFacade) portssvc.TenantSvcFacade {
	return &tenantService{tenantRepo: tenantRepo}
}

var _ portssvc.TenantSvcFacade = (*tenantService)(nil)

// CreateTenant registers a new tenant.
func (s *tenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	startMonth := req.FiscalYearStartMonth
	if startMonth == 0 {
		startMonth = defaultFiscalYearStartMonth
	}
	if startMonth < 1 || startMonth > 12 {
		return nil, fmt.Errorf("%w: fiscalYearStartMonth must be between 1 and 12", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		TenantID:             uuid.NewString(),
		Name:                 req.Name,
		Description:          req.Description,
		DefaultCurrencyCode:  req.DefaultCurrencyCode,
		FiscalYearStartMonth: startMonth,
		IsActive:             true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.tenantRepo.SaveTenant(ctx, tenant); err != nil {
		logger.Error("Failed to save tenant", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Tenant created", slog.String("tenant_id", tenant.TenantID))
	return &tenant, nil
}

// GetTenantByID retrieves a tenant.
func (s *tenantService) GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return s.tenantRepo.FindTenantByID(ctx, tenantID)
}

// ListTenants retrieves a page of tenants.
func (s *tenantService) ListTenants(ctx context.Context, limit int, offset int) ([]domain.Tenant, error) {
	return s.tenantRepo.ListTenants(ctx, limit, offset)
}

// UpdateTenant updates a tenant's descriptive fields. The fiscal year start
// month is immutable after creation: changing it would re-key every period
// aggregate already written.
func (s *tenantService) UpdateTenant(ctx context.Context, tenantID string, req dto.UpdateTenantRequest, userID string) (*domain.Tenant, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != tenant.Name {
		tenant.Name = *req.Name
		updated = true
	}
	if req.Description != nil && *req.Description != tenant.Description {
		tenant.Description = *req.Description
		updated = true
	}
	if !updated {
		return tenant, nil
	}

	tenant.LastUpdatedAt = time.Now().UTC()
	tenant.LastUpdatedBy = userID
	if err := s.tenantRepo.UpdateTenant(ctx, *tenant); err != nil {
		logger.Error("Failed to update tenant", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, err
	}
	return tenant, nil
}
