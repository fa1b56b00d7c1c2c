package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/karobooks/ledger_engine/internal/apperrors"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/core/expr"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// narrationPlaceholder matches {field} references in narration templates.
var narrationPlaceholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// evaluatorService expands posting rules against event payloads. It carries
// no state and performs no I/O, so a single instance is safe for any number
// of concurrent posts.
type evaluatorService struct{}

// NewEvaluatorService creates a new EvaluatorService.
func NewEvaluatorService() portssvc.EvaluatorSvcFacade {
	return &evaluatorService{}
}

var _ portssvc.EvaluatorSvcFacade = (*evaluatorService)(nil)

// RequiredAccountCodes returns the distinct account codes the rule will post
// to for this event, in line order. Field-referenced codes are resolved from
// the payload; a missing field is a hard error.
func (s *evaluatorService) RequiredAccountCodes(rule domain.PostingRule, event domain.BusinessEvent) ([]string, error) {
	seen := map[string]struct{}{}
	codes := []string{}
	for _, line := range rule.Lines {
		code, err := resolveAccountCode(line, event)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// Expand produces a draft balanced entry from the rule and event.
// accountsByCode must contain every code RequiredAccountCodes returned.
// Lines whose amount evaluates to exactly zero are dropped; a rule line for
// an optional deduction simply vanishes when the deduction is absent.
func (s *evaluatorService) Expand(rule domain.PostingRule, event domain.BusinessEvent, accountsByCode map[string]domain.Account) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{
		TenantID:       event.TenantID,
		EntryDate:      event.OccurredAt,
		SourceType:     event.SourceType,
		SourceID:       event.SourceID,
		IdempotencyKey: event.IdempotencyKey,
		RuleCode:       rule.RuleCode,
		Status:         domain.Draft,
		Narration:      renderNarration(rule.RuleCode+" "+event.SourceID, event.Fields),
	}

	position := 0
	for _, line := range rule.Lines {
		code, err := resolveAccountCode(line, event)
		if err != nil {
			return nil, err
		}
		account, ok := accountsByCode[code]
		if !ok {
			return nil, fmt.Errorf("%w: %q (rule %s line %d)", apperrors.ErrUnknownAccountCode, code, rule.RuleCode, line.Position)
		}

		amount, err := evalAmount(line.AmountExpr, event.Fields)
		if err != nil {
			return nil, fmt.Errorf("rule %s line %d: %w", rule.RuleCode, line.Position, err)
		}
		if amount.IsZero() {
			continue
		}

		position++
		entryLine := domain.EntryLine{
			Position:  position,
			AccountID: account.AccountID,
			Side:      line.Side,
			Amount:    amount,
			Narration: renderNarration(line.Narration, event.Fields),
		}
		if line.SubledgerField != "" {
			subledgerID, err := fieldAsString(event.Fields, line.SubledgerField)
			if err != nil {
				return nil, fmt.Errorf("rule %s line %d: %w", rule.RuleCode, line.Position, err)
			}
			entryLine.SubledgerType = account.SubledgerType
			entryLine.SubledgerID = subledgerID
		}
		entry.Lines = append(entry.Lines, entryLine)

		if entry.CurrencyCode == "" {
			entry.CurrencyCode = account.CurrencyCode
		}
	}

	if err := accounting.ValidateEntryBalance(entry.Lines); err != nil {
		return nil, err
	}
	entry.Amount = entry.DebitTotal()
	return entry, nil
}

// resolveAccountCode returns the line's fixed code or reads it from the
// named event field.
func resolveAccountCode(line domain.RuleLine, event domain.BusinessEvent) (string, error) {
	if line.AccountCode != "" {
		return line.AccountCode, nil
	}
	return fieldAsString(event.Fields, line.AccountField)
}

// evalAmount evaluates an amount expression over the event payload and
// rounds the result to the currency exponent. Rounding at the leaf keeps
// per-line rounding differences out of the balance check. Negative results
// are rejected: sides are explicit in the rule, amounts are magnitudes.
func evalAmount(src string, fields map[string]any) (decimal.Decimal, error) {
	parsed, err := expr.Parse(src)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrAmountEvaluation, err)
	}
	result, err := parsed.EvalDecimal(fields)
	if err != nil {
		if errors.Is(err, expr.ErrUndefinedField) {
			return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrMissingRequiredField, err)
		}
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrAmountEvaluation, err)
	}
	if result.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: expression %q produced negative amount %s", apperrors.ErrAmountEvaluation, src, result.String())
	}
	return accounting.RoundAmount(result), nil
}

// renderNarration substitutes {field} placeholders with payload values.
// Unknown fields render as-is; a narration is display text, not a financial
// value, so it never fails a post.
func renderNarration(template string, fields map[string]any) string {
	if template == "" {
		return ""
	}
	return narrationPlaceholder.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		raw, ok := fields[name]
		if !ok {
			return match
		}
		return stringifyField(raw)
	})
}

// fieldAsString reads a required payload field as a string reference.
func fieldAsString(fields map[string]any, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrMissingRequiredField, name)
	}
	value := stringifyField(raw)
	if value == "" {
		return "", fmt.Errorf("%w: %q is empty", apperrors.ErrMissingRequiredField, name)
	}
	return value, nil
}

func stringifyField(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
