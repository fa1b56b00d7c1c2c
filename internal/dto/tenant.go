package dto

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
)

// CreateTenantRequest defines the payload for creating a tenant.
type CreateTenantRequest struct {
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description"`
	DefaultCurrencyCode  string `json:"defaultCurrencyCode" binding:"required,len=3"`
	FiscalYearStartMonth int    `json:"fiscalYearStartMonth" binding:"omitempty,min=1,max=12"`
}

// UpdateTenantRequest defines the payload for updating a tenant.
type UpdateTenantRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TenantResponse defines the data returned for a tenant.
type TenantResponse struct {
	TenantID             string `json:"tenantID"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	DefaultCurrencyCode  string `json:"defaultCurrencyCode"`
	FiscalYearStartMonth int    `json:"fiscalYearStartMonth"`
	IsActive             bool   `json:"isActive"`
}

// ToTenantResponse converts a domain.Tenant to TenantResponse.
func ToTenantResponse(t *domain.Tenant) TenantResponse {
	return TenantResponse{
		TenantID:             t.TenantID,
		Name:                 t.Name,
		Description:          t.Description,
		DefaultCurrencyCode:  t.DefaultCurrencyCode,
		FiscalYearStartMonth: t.FiscalYearStartMonth,
		IsActive:             t.IsActive,
	}
}
