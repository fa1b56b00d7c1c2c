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

type RuleServiceTestSuite struct {
	suite.Suite
	mockRuleRepo  *MockRuleRepository
	mockTenantSvc *MockTenantService
	service       portssvc.RuleSvcFacade
	ctx           context.Context

	tenant     *domain.Tenant
	testUserID string
}

func (suite *RuleServiceTestSuite) SetupTest() {
	suite.mockRuleRepo = new(MockRuleRepository)
	suite.mockTenantSvc = new(MockTenantService)
	suite.service = services.NewRuleService(suite.mockRuleRepo, suite.mockTenantSvc)
	suite.ctx = context.Background()
	suite.testUserID = uuid.NewString()

	suite.tenant = &domain.Tenant{
		TenantID:             uuid.NewString(),
		Name:                 "Acme Traders",
		DefaultCurrencyCode:  "INR",
		FiscalYearStartMonth: 4,
		IsActive:             true,
	}
}

func (suite *RuleServiceTestSuite) validRequest() dto.CreateRuleRequest {
	return dto.CreateRuleRequest{
		RuleCode:     "INV_FINALIZE",
		FiscalYear:   "2025-26",
		SourceType:   "invoice",
		TriggerEvent: "on_finalize",
		Priority:     10,
		Condition:    "total > 0",
		Lines: []dto.RuleLineRequest{
			{AccountField: "receivable_account", Side: "DEBIT", AmountExpr: "total"},
			{AccountCode: "4100", Side: "CREDIT", AmountExpr: "total - tax_amount"},
			{AccountCode: "2320", Side: "CREDIT", AmountExpr: "tax_amount"},
		},
	}
}

func (suite *RuleServiceTestSuite) TestCreateRule_Success() {
	req := suite.validRequest()

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockRuleRepo.On("SaveRule", suite.ctx, mock.AnythingOfType("domain.PostingRule")).Return(nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rule)
	suite.NotEmpty(rule.RuleID)
	suite.Equal("INV_FINALIZE", rule.RuleCode)
	suite.True(rule.IsActive)
	suite.Require().Len(rule.Lines, 3)
	suite.Equal(1, rule.Lines[0].Position)
	suite.Equal(domain.Debit, rule.Lines[0].Side)
	suite.Equal(3, rule.Lines[2].Position)
	suite.Equal(suite.testUserID, rule.CreatedBy)
	suite.mockRuleRepo.AssertExpectations(suite.T())
}

func (suite *RuleServiceTestSuite) TestCreateRule_MalformedCondition() {
	req := suite.validRequest()
	req.Condition = "total >"

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRuleRepo.AssertNotCalled(suite.T(), "SaveRule", mock.Anything, mock.Anything)
}

func (suite *RuleServiceTestSuite) TestCreateRule_MalformedAmountExpression() {
	req := suite.validRequest()
	req.Lines[1].AmountExpr = "total - "

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_BothAccountCodeAndField() {
	req := suite.validRequest()
	req.Lines[0].AccountCode = "1200"

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_NeitherAccountCodeNorField() {
	req := suite.validRequest()
	req.Lines[0].AccountField = ""

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_AllLinesSameSide() {
	req := suite.validRequest()
	req.Lines = []dto.RuleLineRequest{
		{AccountCode: "5100", Side: "DEBIT", AmountExpr: "amount"},
		{AccountCode: "5200", Side: "DEBIT", AmountExpr: "amount"},
	}

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_UnknownSide() {
	req := suite.validRequest()
	req.Lines[0].Side = "BOTH"

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_DuplicateCodeAndYear() {
	req := suite.validRequest()

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockRuleRepo.On("SaveRule", suite.ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	rule, err := suite.service.CreateRule(suite.ctx, suite.tenant.TenantID, req, suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *RuleServiceTestSuite) TestResolve_OrdersByPriorityConditionThenCode() {
	unconditionedHigh := domain.PostingRule{RuleID: uuid.NewString(), RuleCode: "B_RULE", Priority: 10, IsActive: true}
	conditionedHigh := domain.PostingRule{RuleID: uuid.NewString(), RuleCode: "C_RULE", Priority: 10, Condition: "tds_amount > 0", IsActive: true}
	conditionedLow := domain.PostingRule{RuleID: uuid.NewString(), RuleCode: "A_RULE", Priority: 5, Condition: "amount > 100", IsActive: true}
	unconditionedTie := domain.PostingRule{RuleID: uuid.NewString(), RuleCode: "A_TIE", Priority: 10, IsActive: true}

	suite.mockRuleRepo.On("FindMatchingRules", suite.ctx, suite.tenant.TenantID, "payment", "on_finalize", "2025-26").
		Return([]domain.PostingRule{unconditionedHigh, conditionedLow, unconditionedTie, conditionedHigh}, nil).Once()

	rules, err := suite.service.Resolve(suite.ctx, suite.tenant.TenantID, "payment", "on_finalize", "2025-26")

	suite.Require().NoError(err)
	suite.Require().Len(rules, 4)
	// Highest priority first; at equal priority conditioned rules come
	// before unconditioned ones, then rule code breaks the tie.
	suite.Equal("C_RULE", rules[0].RuleCode)
	suite.Equal("A_TIE", rules[1].RuleCode)
	suite.Equal("B_RULE", rules[2].RuleCode)
	suite.Equal("A_RULE", rules[3].RuleCode)
}

func (suite *RuleServiceTestSuite) TestResolve_NoRulesMatch() {
	suite.mockRuleRepo.On("FindMatchingRules", suite.ctx, suite.tenant.TenantID, "payment", "on_cancel", "2025-26").
		Return([]domain.PostingRule{}, nil).Once()

	rules, err := suite.service.Resolve(suite.ctx, suite.tenant.TenantID, "payment", "on_cancel", "2025-26")

	suite.Require().Error(err)
	suite.Nil(rules)
	suite.ErrorIs(err, apperrors.ErrNoMatchingRule)
}

func (suite *RuleServiceTestSuite) TestDeactivateRule_DelegatesToRepo() {
	ruleID := uuid.NewString()
	suite.mockRuleRepo.On("DeactivateRule", suite.ctx, suite.tenant.TenantID, ruleID, suite.testUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateRule(suite.ctx, suite.tenant.TenantID, ruleID, suite.testUserID)

	suite.Require().NoError(err)
	suite.mockRuleRepo.AssertExpectations(suite.T())
}

func TestRuleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RuleServiceTestSuite))
}
