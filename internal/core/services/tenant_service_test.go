package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/core/services"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TenantServiceTestSuite struct {
	suite.Suite
	mockTenantRepo *MockTenantRepository
	service        portssvc.TenantSvcFacade
	ctx            context.Context
	testUserID     string
}

func (suite *TenantServiceTestSuite) SetupTest() {
	suite.mockTenantRepo = new(MockTenantRepository)
	suite.service = services.NewTenantService(suite.mockTenantRepo)
	suite.ctx = context.Background()
	suite.testUserID = uuid.NewString()
}

func (suite *TenantServiceTestSuite) TestCreateTenant_Success() {
	req := dto.CreateTenantRequest{
		Name:                 "Acme Traders",
		DefaultCurrencyCode:  "INR",
		FiscalYearStartMonth: 1,
	}

	suite.mockTenantRepo.On("SaveTenant", suite.ctx, mock.AnythingOfType("domain.Tenant")).Return(nil).Once()

	tenant, err := suite.service.CreateTenant(suite.ctx, req, suite.testUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(tenant)
	suite.NotEmpty(tenant.TenantID)
	suite.Equal(1, tenant.FiscalYearStartMonth)
	suite.True(tenant.IsActive)
	suite.Equal(suite.testUserID, tenant.CreatedBy)
	suite.mockTenantRepo.AssertExpectations(suite.T())
}

func (suite *TenantServiceTestSuite) TestCreateTenant_DefaultsFiscalStartToApril() {
	req := dto.CreateTenantRequest{Name: "Acme Traders", DefaultCurrencyCode: "INR"}

	suite.mockTenantRepo.On("SaveTenant", suite.ctx, mock.Anything).Return(nil).Once()

	tenant, err := suite.service.CreateTenant(suite.ctx, req, suite.testUserID)

	suite.Require().NoError(err)
	suite.Equal(4, tenant.FiscalYearStartMonth)
}

func (suite *TenantServiceTestSuite) TestCreateTenant_InvalidFiscalStartMonth() {
	req := dto.CreateTenantRequest{Name: "Acme Traders", DefaultCurrencyCode: "INR", FiscalYearStartMonth: 13}

	tenant, err := suite.service.CreateTenant(suite.ctx, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(tenant)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTenantRepo.AssertNotCalled(suite.T(), "SaveTenant", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestUpdateTenant_ChangesDescriptiveFieldsOnly() {
	tenantID := uuid.NewString()
	existing := &domain.Tenant{
		TenantID:             tenantID,
		Name:                 "Acme Traders",
		FiscalYearStartMonth: 4,
		IsActive:             true,
	}
	newName := "Acme Traders Pvt Ltd"

	suite.mockTenantRepo.On("FindTenantByID", suite.ctx, tenantID).Return(existing, nil).Once()
	suite.mockTenantRepo.On("UpdateTenant", suite.ctx, mock.MatchedBy(func(t domain.Tenant) bool {
		return t.Name == newName && t.FiscalYearStartMonth == 4
	})).Return(nil).Once()

	tenant, err := suite.service.UpdateTenant(suite.ctx, tenantID, dto.UpdateTenantRequest{Name: &newName}, suite.testUserID)

	suite.Require().NoError(err)
	suite.Equal(newName, tenant.Name)
	suite.Equal(suite.testUserID, tenant.LastUpdatedBy)
	suite.mockTenantRepo.AssertExpectations(suite.T())
}

func (suite *TenantServiceTestSuite) TestUpdateTenant_NoChangesSkipsWrite() {
	tenantID := uuid.NewString()
	existing := &domain.Tenant{TenantID: tenantID, Name: "Acme Traders", IsActive: true}
	sameName := "Acme Traders"

	suite.mockTenantRepo.On("FindTenantByID", suite.ctx, tenantID).Return(existing, nil).Once()

	tenant, err := suite.service.UpdateTenant(suite.ctx, tenantID, dto.UpdateTenantRequest{Name: &sameName}, suite.testUserID)

	suite.Require().NoError(err)
	suite.Equal("Acme Traders", tenant.Name)
	suite.mockTenantRepo.AssertNotCalled(suite.T(), "UpdateTenant", mock.Anything, mock.Anything)
}

func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}
