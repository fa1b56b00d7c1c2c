package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/core/services"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CorrectionServiceTestSuite struct {
	suite.Suite
	mockEntryRepo   *MockEntryRepository
	mockAccountRepo *MockAccountRepository
	mockTenantSvc   *MockTenantService
	mockPostingSvc  *MockPostingService
	service         portssvc.CorrectionSvcFacade
	ctx             context.Context

	tenant        *domain.Tenant
	bankAccount   domain.Account
	expenseAcct   domain.Account
	originalEntry *domain.JournalEntry
	originalLines []domain.EntryLine
	testUserID    string
}

func (suite *CorrectionServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTenantSvc = new(MockTenantService)
	suite.mockPostingSvc = new(MockPostingService)
	suite.service = services.NewCorrectionService(suite.mockEntryRepo, suite.mockAccountRepo, suite.mockTenantSvc, suite.mockPostingSvc)
	suite.ctx = context.Background()
	suite.testUserID = uuid.NewString()

	suite.tenant = &domain.Tenant{
		TenantID:             uuid.NewString(),
		Name:                 "Acme Traders",
		DefaultCurrencyCode:  "INR",
		FiscalYearStartMonth: 4,
		IsActive:             true,
	}
	suite.bankAccount = domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    suite.tenant.TenantID,
		Code:        "1110",
		AccountType: domain.Asset,
		NormalSide:  domain.Debit,
		IsActive:    true,
	}
	suite.expenseAcct = domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    suite.tenant.TenantID,
		Code:        "5100",
		AccountType: domain.Expense,
		NormalSide:  domain.Debit,
		IsActive:    true,
	}

	entryID := uuid.NewString()
	suite.originalEntry = &domain.JournalEntry{
		EntryID:      entryID,
		TenantID:     suite.tenant.TenantID,
		EntryDate:    time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		SourceType:   "payment",
		SourceID:     "PAY-001",
		RuleCode:     "PMT_SIMPLE",
		Status:       domain.Posted,
		CurrencyCode: "INR",
		Amount:       decimal.NewFromInt(500),
	}
	suite.originalLines = []domain.EntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, Position: 1, AccountID: suite.expenseAcct.AccountID, Side: domain.Debit, Amount: decimal.NewFromInt(500)},
		{LineID: uuid.NewString(), EntryID: entryID, Position: 2, AccountID: suite.bankAccount.AccountID, Side: domain.Credit, Amount: decimal.NewFromInt(500)},
	}
}

func (suite *CorrectionServiceTestSuite) accountsByID() map[string]domain.Account {
	return map[string]domain.Account{
		suite.bankAccount.AccountID: suite.bankAccount,
		suite.expenseAcct.AccountID: suite.expenseAcct,
	}
}

func (suite *CorrectionServiceTestSuite) TestReverseEntry_Success() {
	entryID := suite.originalEntry.EntryID

	var savedReversal domain.JournalEntry
	var savedChanges map[string]decimal.Decimal
	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, entryID).Return(suite.originalEntry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", suite.ctx, entryID).Return(suite.originalLines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, suite.tenant.TenantID, mock.AnythingOfType("[]string")).Return(suite.accountsByID(), nil).Once()
	suite.mockEntryRepo.On("SaveReversalEntry", suite.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.EntryLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("string"), entryID, suite.testUserID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			savedReversal = args.Get(1).(domain.JournalEntry)
			savedChanges = args.Get(3).(map[string]decimal.Decimal)
		}).
		Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, suite.tenant.TenantID, entryID, "wrong vendor", suite.testUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(domain.Posted, reversal.Status)
	suite.Require().NotNil(reversal.CorrectionOf)
	suite.Equal(entryID, *reversal.CorrectionOf)
	suite.Require().NotNil(reversal.IdempotencyKey)
	suite.Equal("reversal-of-"+entryID, *reversal.IdempotencyKey)
	suite.Contains(reversal.Narration, "wrong vendor")

	// Sides swapped, amounts unchanged.
	suite.Require().Len(savedReversal.Lines, 2)
	suite.Equal(domain.Credit, savedReversal.Lines[0].Side)
	suite.Equal(suite.expenseAcct.AccountID, savedReversal.Lines[0].AccountID)
	suite.Equal(domain.Debit, savedReversal.Lines[1].Side)
	suite.True(savedReversal.Lines[0].Amount.Equal(decimal.NewFromInt(500)))

	// The reversal's balance effect is the exact negation of the original.
	suite.True(savedChanges[suite.expenseAcct.AccountID].Equal(decimal.NewFromInt(-500)))
	suite.True(savedChanges[suite.bankAccount.AccountID].Equal(decimal.NewFromInt(500)))

	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *CorrectionServiceTestSuite) TestReverseEntry_AlreadyReversed() {
	entryID := suite.originalEntry.EntryID
	reversedBy := uuid.NewString()
	suite.originalEntry.ReversedBy = &reversedBy

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, entryID).Return(suite.originalEntry, nil).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, suite.tenant.TenantID, entryID, "again", suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveReversalEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CorrectionServiceTestSuite) TestReverseEntry_NotPosted() {
	entryID := suite.originalEntry.EntryID
	suite.originalEntry.Status = domain.Void

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, entryID).Return(suite.originalEntry, nil).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, suite.tenant.TenantID, entryID, "void", suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *CorrectionServiceTestSuite) TestReverseEntry_ConcurrentReversalLosesRace() {
	entryID := suite.originalEntry.EntryID

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, entryID).Return(suite.originalEntry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", suite.ctx, entryID).Return(suite.originalLines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, suite.tenant.TenantID, mock.Anything).Return(suite.accountsByID(), nil).Once()
	suite.mockEntryRepo.On("SaveReversalEntry", suite.ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, entryID, suite.testUserID, mock.Anything).Return(apperrors.ErrConflict).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, suite.tenant.TenantID, entryID, "race", suite.testUserID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *CorrectionServiceTestSuite) TestAmendEntry_ReversesAndReposts() {
	entryID := suite.originalEntry.EntryID
	correctedEvent := domain.BusinessEvent{
		SourceType:   "payment",
		SourceID:     "PAY-001",
		TriggerEvent: "on_finalize",
		OccurredAt:   time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		Fields:       map[string]any{"amount": "450"},
	}
	replacement := &domain.JournalEntry{
		EntryID:      uuid.NewString(),
		TenantID:     suite.tenant.TenantID,
		Status:       domain.Posted,
		CorrectionOf: &entryID,
	}

	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, entryID).Return(suite.originalEntry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", suite.ctx, entryID).Return(suite.originalLines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, suite.tenant.TenantID, mock.Anything).Return(suite.accountsByID(), nil).Once()
	suite.mockEntryRepo.On("SaveReversalEntry", suite.ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, entryID, suite.testUserID, mock.Anything).Return(nil).Once()
	suite.mockPostingSvc.On("PostCorrectingEvent", suite.ctx, mock.MatchedBy(func(ev domain.BusinessEvent) bool {
		return ev.TenantID == suite.tenant.TenantID &&
			ev.IdempotencyKey != nil && *ev.IdempotencyKey == "amendment-of-"+entryID
	}), suite.testUserID, entryID).Return(replacement, nil).Once()

	got, err := suite.service.AmendEntry(suite.ctx, suite.tenant.TenantID, entryID, correctedEvent, "amount typo", suite.testUserID)

	suite.Require().NoError(err)
	suite.Equal(replacement.EntryID, got.EntryID)
	suite.mockPostingSvc.AssertExpectations(suite.T())
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *CorrectionServiceTestSuite) TestAmendEntry_ReplayAfterPartialAmendment() {
	entryID := suite.originalEntry.EntryID
	reversedBy := uuid.NewString()
	alreadyReversed := *suite.originalEntry
	alreadyReversed.ReversedBy = &reversedBy
	replacement := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted, CorrectionOf: &entryID}

	// ReverseEntry fails with conflict, then the replay check observes the
	// original already reversed and proceeds to the replacement post.
	suite.mockTenantSvc.On("GetTenantByID", suite.ctx, suite.tenant.TenantID).Return(suite.tenant, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, entryID).Return(&alreadyReversed, nil).Twice()
	suite.mockPostingSvc.On("PostCorrectingEvent", suite.ctx, mock.Anything, suite.testUserID, entryID).Return(replacement, nil).Once()

	got, err := suite.service.AmendEntry(suite.ctx, suite.tenant.TenantID, entryID, domain.BusinessEvent{Fields: map[string]any{}}, "replay", suite.testUserID)

	suite.Require().NoError(err)
	suite.Equal(replacement.EntryID, got.EntryID)
}

func (suite *CorrectionServiceTestSuite) TestGetCorrectionChain_WalksToRootAndDown() {
	rootID := uuid.NewString()
	reversalID := uuid.NewString()
	replacementID := uuid.NewString()

	root := domain.JournalEntry{EntryID: rootID, TenantID: suite.tenant.TenantID, Status: domain.Posted, ReversedBy: &reversalID}
	reversal := domain.JournalEntry{EntryID: reversalID, TenantID: suite.tenant.TenantID, Status: domain.Posted, CorrectionOf: &rootID}
	replacement := domain.JournalEntry{EntryID: replacementID, TenantID: suite.tenant.TenantID, Status: domain.Posted, CorrectionOf: &rootID}

	// Start from the replacement: the walk climbs to the root, then
	// collects the whole chain breadth first.
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, replacementID).Return(&replacement, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, rootID).Return(&root, nil).Once()
	suite.mockEntryRepo.On("FindCorrections", suite.ctx, suite.tenant.TenantID, rootID).Return([]domain.JournalEntry{reversal, replacement}, nil).Once()
	suite.mockEntryRepo.On("FindCorrections", suite.ctx, suite.tenant.TenantID, reversalID).Return([]domain.JournalEntry{}, nil).Once()
	suite.mockEntryRepo.On("FindCorrections", suite.ctx, suite.tenant.TenantID, replacementID).Return([]domain.JournalEntry{}, nil).Once()

	chain, err := suite.service.GetCorrectionChain(suite.ctx, suite.tenant.TenantID, replacementID)

	suite.Require().NoError(err)
	suite.Require().Len(chain, 3)
	suite.Equal(rootID, chain[0].EntryID)
	suite.Equal(reversalID, chain[1].EntryID)
	suite.Equal(replacementID, chain[2].EntryID)
}

func (suite *CorrectionServiceTestSuite) TestGetCorrectionChain_CycleDetected() {
	aID := uuid.NewString()
	bID := uuid.NewString()

	// Corrupt links: A corrects B and B corrects A.
	a := domain.JournalEntry{EntryID: aID, TenantID: suite.tenant.TenantID, CorrectionOf: &bID}
	b := domain.JournalEntry{EntryID: bID, TenantID: suite.tenant.TenantID, CorrectionOf: &aID}

	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, aID).Return(&a, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", suite.ctx, suite.tenant.TenantID, bID).Return(&b, nil).Once()

	chain, err := suite.service.GetCorrectionChain(suite.ctx, suite.tenant.TenantID, aID)

	suite.Require().Error(err)
	suite.Nil(chain)
	suite.ErrorIs(err, apperrors.ErrCorrectionChainCycle)
}

func TestCorrectionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CorrectionServiceTestSuite))
}
