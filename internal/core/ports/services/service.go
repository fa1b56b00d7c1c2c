package services

// ServiceContainer bundles the engine's service facades for injection into
// the HTTP layer.
type ServiceContainer struct {
	Tenant     TenantSvcFacade
	Account    AccountSvcFacade
	Rule       RuleSvcFacade
	Posting    PostingSvcFacade
	Balance    BalanceSvcFacade
	Correction CorrectionSvcFacade
	Reporting  ReportingSvcFacade
}
