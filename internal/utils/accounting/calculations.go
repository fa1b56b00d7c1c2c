package accounting

import (
	"fmt"

	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyExponent is the number of minor-unit digits amounts are rounded
// to. Rounding is applied once, at leaf amount evaluation, and never again
// after aggregation.
const CurrencyExponent = 2

// RoundAmount rounds a leaf amount half-up to the smallest currency unit.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	// decimal.Round rounds half away from zero; amounts here are positive.
	return d.Round(CurrencyExponent)
}

// SignedAmount applies the correct sign to a line amount based on the
// account's normal balance side: a debit increases a debit-normal account
// and decreases a credit-normal account, and vice versa.
func SignedAmount(side domain.EntrySide, amount decimal.Decimal, normalSide domain.EntrySide) (decimal.Decimal, error) {
	switch normalSide {
	case domain.Debit:
		if side == domain.Credit {
			return amount.Neg(), nil
		}
		return amount, nil
	case domain.Credit:
		if side == domain.Debit {
			return amount.Neg(), nil
		}
		return amount, nil
	}
	return decimal.Zero, fmt.Errorf("unknown normal balance side %q", normalSide)
}

// ValidateEntryBalance checks the double-entry invariant over an entry's
// lines: at least two lines, positive amounts, and debit total equal to
// credit total, exactly, in the smallest currency unit.
func ValidateEntryBalance(lines []domain.EntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrUnbalancedEntry)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s", line.AccountID)
		}
		if line.Side == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debit total %s does not equal credit total %s", apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	return nil
}

// NetBalanceChanges aggregates the signed per-account effect of an entry's
// lines. Increments are commutative, so the resulting deltas can be applied
// as atomic counter updates without per-account locks being held across
// entries.
func NetBalanceChanges(lines []domain.EntryLine, normalSides map[string]domain.EntrySide) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		normalSide, ok := normalSides[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("normal side unknown for account %s", line.AccountID)
		}
		signed, err := SignedAmount(line.Side, line.Amount, normalSide)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}
