package accounting_test

import (
	"testing"
	"time"

	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSignedAmount(t *testing.T) {
	testCases := []struct {
		name       string
		side       domain.EntrySide
		normalSide domain.EntrySide
		expected   string
	}{
		{"debit to debit-normal increases", domain.Debit, domain.Debit, "100"},
		{"credit to debit-normal decreases", domain.Credit, domain.Debit, "-100"},
		{"credit to credit-normal increases", domain.Credit, domain.Credit, "100"},
		{"debit to credit-normal decreases", domain.Debit, domain.Credit, "-100"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := accounting.SignedAmount(tc.side, d("100"), tc.normalSide)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tc.expected)), "expected %s, got %s", tc.expected, got)
		})
	}

	_, err := accounting.SignedAmount(domain.Debit, d("100"), domain.EntrySide("SIDEWAYS"))
	assert.Error(t, err)
}

func TestRoundAmount(t *testing.T) {
	assert.True(t, accounting.RoundAmount(d("10.005")).Equal(d("10.01")))
	assert.True(t, accounting.RoundAmount(d("10.004")).Equal(d("10.00")))
	assert.True(t, accounting.RoundAmount(d("10")).Equal(d("10")))
}

func TestValidateEntryBalance(t *testing.T) {
	balanced := []domain.EntryLine{
		{AccountID: "a1", Side: domain.Debit, Amount: d("100")},
		{AccountID: "a2", Side: domain.Credit, Amount: d("60")},
		{AccountID: "a3", Side: domain.Credit, Amount: d("40")},
	}
	assert.NoError(t, accounting.ValidateEntryBalance(balanced))

	unbalanced := []domain.EntryLine{
		{AccountID: "a1", Side: domain.Debit, Amount: d("100")},
		{AccountID: "a2", Side: domain.Credit, Amount: d("99.99")},
	}
	assert.ErrorIs(t, accounting.ValidateEntryBalance(unbalanced), apperrors.ErrUnbalancedEntry)

	single := balanced[:1]
	assert.ErrorIs(t, accounting.ValidateEntryBalance(single), apperrors.ErrUnbalancedEntry)

	negative := []domain.EntryLine{
		{AccountID: "a1", Side: domain.Debit, Amount: d("-5")},
		{AccountID: "a2", Side: domain.Credit, Amount: d("-5")},
	}
	assert.Error(t, accounting.ValidateEntryBalance(negative))
}

func TestNetBalanceChanges(t *testing.T) {
	lines := []domain.EntryLine{
		{AccountID: "bank", Side: domain.Debit, Amount: d("100")},
		{AccountID: "bank", Side: domain.Credit, Amount: d("30")},
		{AccountID: "receivable", Side: domain.Credit, Amount: d("70")},
	}
	normalSides := map[string]domain.EntrySide{
		"bank":       domain.Debit,
		"receivable": domain.Debit,
	}

	changes, err := accounting.NetBalanceChanges(lines, normalSides)
	require.NoError(t, err)
	assert.True(t, changes["bank"].Equal(d("70")))
	assert.True(t, changes["receivable"].Equal(d("-70")))

	_, err = accounting.NetBalanceChanges(lines, map[string]domain.EntrySide{"bank": domain.Debit})
	assert.Error(t, err)
}

func TestFiscalPeriodKey(t *testing.T) {
	testCases := []struct {
		date       string
		startMonth int
		year       string
		period     string
	}{
		{"2025-06-15", 4, "2025-26", "2025-26-03"},
		{"2025-03-31", 4, "2024-25", "2024-25-12"},
		{"2025-04-01", 4, "2025-26", "2025-26-01"},
		{"2025-06-15", 1, "2025", "2025-06"},
		{"2025-12-31", 1, "2025", "2025-12"},
	}

	for _, tc := range testCases {
		date, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.year, accounting.FiscalYear(date, tc.startMonth), "fiscal year for %s", tc.date)
		assert.Equal(t, tc.period, accounting.FiscalPeriodKey(date, tc.startMonth), "period key for %s", tc.date)
	}
}
