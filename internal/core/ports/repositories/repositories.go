package repositories

// RepositoryProvider bundles the repository facades handed to the service
// layer at startup.
type RepositoryProvider struct {
	TenantRepo    TenantRepositoryFacade
	AccountRepo   AccountRepositoryFacade
	RuleRepo      RuleRepositoryFacade
	EntryRepo     EntryRepositoryFacade
	BalanceRepo   BalanceRepositoryFacade
	ReportingRepo ReportingRepositoryFacade
}
