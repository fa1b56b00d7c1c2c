package services

import (
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
)

// NewServiceContainer creates a service container with fully wired
// dependencies.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Tenant service first: most other services consult it for fiscal
	// calendar and existence checks.
	container.Tenant = NewTenantService(repos.TenantRepo)

	container.Account = NewAccountService(repos.AccountRepo, repos.BalanceRepo, container.Tenant)
	container.Rule = NewRuleService(repos.RuleRepo, container.Tenant)

	evaluator := NewEvaluatorService()
	container.Posting = NewPostingService(repos.EntryRepo, repos.AccountRepo, container.Rule, container.Tenant, evaluator)
	container.Balance = NewBalanceService(repos.BalanceRepo, repos.AccountRepo)
	container.Correction = NewCorrectionService(repos.EntryRepo, repos.AccountRepo, container.Tenant, container.Posting)
	container.Reporting = NewReportingService(repos.ReportingRepo, container.Tenant)

	return container
}
