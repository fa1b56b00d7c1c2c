package models

// Tenant maps to the tenants table.
type Tenant struct {
	TenantID             string `json:"tenantID"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	DefaultCurrencyCode  string `json:"defaultCurrencyCode"`
	FiscalYearStartMonth int    `json:"fiscalYearStartMonth"`
	IsActive             bool   `json:"isActive"`
	AuditFields
}
