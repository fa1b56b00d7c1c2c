package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/core/services"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BalanceServiceTestSuite struct {
	suite.Suite
	mockBalanceRepo *MockBalanceRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.BalanceSvcFacade
	ctx             context.Context

	tenantID  string
	accountID string
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockBalanceRepo = new(MockBalanceRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewBalanceService(suite.mockBalanceRepo, suite.mockAccountRepo)
	suite.ctx = context.Background()
	suite.tenantID = uuid.NewString()
	suite.accountID = uuid.NewString()
}

func (suite *BalanceServiceTestSuite) TestGetAccountBalance_ReadsCachedValue() {
	account := &domain.Account{AccountID: suite.accountID, TenantID: suite.tenantID, Balance: decimal.NewFromInt(4200)}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, suite.accountID).Return(account, nil).Once()

	balance, err := suite.service.GetAccountBalance(suite.ctx, suite.tenantID, suite.accountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(4200)))
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "SumPostedMovement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestGetAccountBalance_AccountNotFound() {
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, suite.accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccountBalance(suite.ctx, suite.tenantID, suite.accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BalanceServiceTestSuite) TestListPeriodBalances_ChecksAccountFirst() {
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, suite.accountID).Return(nil, apperrors.ErrNotFound).Once()

	balances, err := suite.service.ListPeriodBalances(suite.ctx, suite.tenantID, suite.accountID)

	suite.Require().Error(err)
	suite.Nil(balances)
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "ListPeriodBalances", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestListPeriodBalances_Success() {
	account := &domain.Account{AccountID: suite.accountID, TenantID: suite.tenantID}
	periods := []domain.AccountPeriodBalance{
		{AccountID: suite.accountID, PeriodKey: "2025-26-01", Movement: decimal.NewFromInt(100), ClosingBalance: decimal.NewFromInt(100)},
		{AccountID: suite.accountID, PeriodKey: "2025-26-02", Movement: decimal.NewFromInt(-30), ClosingBalance: decimal.NewFromInt(70)},
	}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, suite.accountID).Return(account, nil).Once()
	suite.mockBalanceRepo.On("ListPeriodBalances", suite.ctx, suite.tenantID, suite.accountID).Return(periods, nil).Once()

	balances, err := suite.service.ListPeriodBalances(suite.ctx, suite.tenantID, suite.accountID)

	suite.Require().NoError(err)
	suite.Len(balances, 2)
	suite.Equal("2025-26-01", balances[0].PeriodKey)
}

func (suite *BalanceServiceTestSuite) TestReapplyUnapplied_CountsOnlyFreshApplies() {
	entryA := uuid.NewString()
	entryB := uuid.NewString()
	entryC := uuid.NewString()

	suite.mockBalanceRepo.On("FindUnappliedEntryIDs", suite.ctx, suite.tenantID).Return([]string{entryA, entryB, entryC}, nil).Once()
	suite.mockBalanceRepo.On("ApplyEntryBalances", suite.ctx, suite.tenantID, entryA).Return(true, nil).Once()
	// A concurrent run got to entryB first; the mark makes this a no-op.
	suite.mockBalanceRepo.On("ApplyEntryBalances", suite.ctx, suite.tenantID, entryB).Return(false, nil).Once()
	suite.mockBalanceRepo.On("ApplyEntryBalances", suite.ctx, suite.tenantID, entryC).Return(true, nil).Once()

	applied, err := suite.service.ReapplyUnapplied(suite.ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.Equal(2, applied)
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestReapplyUnapplied_NothingToDo() {
	suite.mockBalanceRepo.On("FindUnappliedEntryIDs", suite.ctx, suite.tenantID).Return([]string{}, nil).Once()

	applied, err := suite.service.ReapplyUnapplied(suite.ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.Zero(applied)
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "ApplyEntryBalances", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestReapplyUnapplied_StopsOnError() {
	entryA := uuid.NewString()
	entryB := uuid.NewString()

	suite.mockBalanceRepo.On("FindUnappliedEntryIDs", suite.ctx, suite.tenantID).Return([]string{entryA, entryB}, nil).Once()
	suite.mockBalanceRepo.On("ApplyEntryBalances", suite.ctx, suite.tenantID, entryA).Return(false, apperrors.ErrInternal).Once()

	applied, err := suite.service.ReapplyUnapplied(suite.ctx, suite.tenantID)

	suite.Require().Error(err)
	suite.Zero(applied)
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "ApplyEntryBalances", suite.ctx, suite.tenantID, entryB)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
