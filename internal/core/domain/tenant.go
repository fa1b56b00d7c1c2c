package domain

// Tenant is the unit of isolation for the posting engine. Every account,
// rule, entry and balance belongs to exactly one tenant.
type Tenant struct {
	TenantID             string `json:"tenantID"` // Primary Key (e.g., UUID)
	Name                 string `json:"name"`
	Description          string `json:"description"`
	DefaultCurrencyCode  string `json:"defaultCurrencyCode"`
	FiscalYearStartMonth int    `json:"fiscalYearStartMonth"` // 1-12; 4 means the fiscal year runs April-March
	IsActive             bool   `json:"isActive"`
	AuditFields
}
