package services

import (
	"context"
	"log/slog"

	"github.com/karobooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/karobooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/middleware"
	"github.com/shopspring/decimal"
)

// reportingService builds reports over the engine's outputs.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepositoryFacade
	tenantSvc     portssvc.TenantSvcFacade
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo, tenantSvc: tenantSvc}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// GetTrialBalance aggregates every active account's cached balance into
// debit and credit columns. Unequal totals mean ledger corruption; the
// report still returns so the caller can see where, but it is logged loudly.
func (s *reportingService) GetTrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalanceReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.tenantSvc.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetTrialBalanceRows(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		Rows:        rows,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, row := range rows {
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
	}

	if !report.TotalDebit.Equal(report.TotalCredit) {
		logger.Error("Trial balance does not balance",
			slog.String("tenant_id", tenantID),
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()),
		)
	}
	return report, nil
}
