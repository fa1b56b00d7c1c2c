package mapping

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/models"
)

// ToModelTenant converts a domain Tenant to a model Tenant.
func ToModelTenant(d domain.Tenant) models.Tenant {
	return models.Tenant{
		TenantID:             d.TenantID,
		Name:                 d.Name,
		Description:          d.Description,
		DefaultCurrencyCode:  d.DefaultCurrencyCode,
		FiscalYearStartMonth: d.FiscalYearStartMonth,
		IsActive:             d.IsActive,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTenant converts a model Tenant to a domain Tenant.
func ToDomainTenant(m models.Tenant) domain.Tenant {
	return domain.Tenant{
		TenantID:             m.TenantID,
		Name:                 m.Name,
		Description:          m.Description,
		DefaultCurrencyCode:  m.DefaultCurrencyCode,
		FiscalYearStartMonth: m.FiscalYearStartMonth,
		IsActive:             m.IsActive,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
