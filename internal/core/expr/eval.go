package expr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Evaluation errors. Callers map these onto their own taxonomy.
var (
	// ErrUndefinedField is returned when the expression references an event
	// field that is not present in the payload.
	ErrUndefinedField = errors.New("undefined field")

	// ErrDivisionByZero is returned when a division's denominator evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrTypeMismatch is returned when an operand has the wrong type for its
	// operator, or a field value cannot be coerced to a decimal.
	ErrTypeMismatch = errors.New("operand type mismatch")
)

// value is either a decimal or a boolean.
type value struct {
	num    decimal.Decimal
	b      bool
	isBool bool
}

func numValue(d decimal.Decimal) value { return value{num: d} }
func boolValue(b bool) value           { return value{b: b, isBool: true} }

// EvalDecimal evaluates the expression against an event payload and requires
// a numeric result.
func (e *Expr) EvalDecimal(fields map[string]any) (decimal.Decimal, error) {
	v, err := e.root.eval(fields)
	if err != nil {
		return decimal.Zero, err
	}
	if v.isBool {
		return decimal.Zero, fmt.Errorf("%w: expression %q yields a boolean, expected a number", ErrTypeMismatch, e.src)
	}
	return v.num, nil
}

// EvalBool evaluates the expression against an event payload and requires a
// boolean result. Used for rule conditions.
func (e *Expr) EvalBool(fields map[string]any) (bool, error) {
	v, err := e.root.eval(fields)
	if err != nil {
		return false, err
	}
	if !v.isBool {
		return false, fmt.Errorf("%w: expression %q yields a number, expected a boolean", ErrTypeMismatch, e.src)
	}
	return v.b, nil
}

func (n *numberNode) eval(map[string]any) (value, error) {
	return numValue(n.val), nil
}

func (n *identNode) eval(fields map[string]any) (value, error) {
	raw, ok := fields[n.name]
	if !ok {
		return value{}, fmt.Errorf("%w: %q", ErrUndefinedField, n.name)
	}
	return coerceValue(n.name, raw)
}

func (n *unaryNode) eval(fields map[string]any) (value, error) {
	v, err := n.child.eval(fields)
	if err != nil {
		return value{}, err
	}
	switch n.op {
	case tokenMinus:
		if v.isBool {
			return value{}, fmt.Errorf("%w: cannot negate a boolean", ErrTypeMismatch)
		}
		return numValue(v.num.Neg()), nil
	case tokenNot:
		if !v.isBool {
			return value{}, fmt.Errorf("%w: '!' requires a boolean", ErrTypeMismatch)
		}
		return boolValue(!v.b), nil
	}
	return value{}, fmt.Errorf("%w: unknown unary operator", ErrTypeMismatch)
}

func (n *condNode) eval(fields map[string]any) (value, error) {
	c, err := n.cond.eval(fields)
	if err != nil {
		return value{}, err
	}
	if !c.isBool {
		return value{}, fmt.Errorf("%w: conditional test must be a boolean", ErrTypeMismatch)
	}
	if c.b {
		return n.then.eval(fields)
	}
	return n.otherwise.eval(fields)
}

func (n *binaryNode) eval(fields map[string]any) (value, error) {
	// Boolean connectives short-circuit.
	if n.op == tokenAnd || n.op == tokenOr {
		l, err := n.left.eval(fields)
		if err != nil {
			return value{}, err
		}
		if !l.isBool {
			return value{}, fmt.Errorf("%w: '&&'/'||' require boolean operands", ErrTypeMismatch)
		}
		if n.op == tokenAnd && !l.b {
			return boolValue(false), nil
		}
		if n.op == tokenOr && l.b {
			return boolValue(true), nil
		}
		r, err := n.right.eval(fields)
		if err != nil {
			return value{}, err
		}
		if !r.isBool {
			return value{}, fmt.Errorf("%w: '&&'/'||' require boolean operands", ErrTypeMismatch)
		}
		return boolValue(r.b), nil
	}

	l, err := n.left.eval(fields)
	if err != nil {
		return value{}, err
	}
	r, err := n.right.eval(fields)
	if err != nil {
		return value{}, err
	}
	if l.isBool || r.isBool {
		// == and != compare booleans; everything else is numeric only.
		if (n.op == tokenEq || n.op == tokenNeq) && l.isBool && r.isBool {
			eq := l.b == r.b
			if n.op == tokenNeq {
				eq = !eq
			}
			return boolValue(eq), nil
		}
		return value{}, fmt.Errorf("%w: operator requires numeric operands", ErrTypeMismatch)
	}

	switch n.op {
	case tokenPlus:
		return numValue(l.num.Add(r.num)), nil
	case tokenMinus:
		return numValue(l.num.Sub(r.num)), nil
	case tokenStar:
		return numValue(l.num.Mul(r.num)), nil
	case tokenSlash:
		if r.num.IsZero() {
			return value{}, ErrDivisionByZero
		}
		return numValue(l.num.Div(r.num)), nil
	case tokenEq:
		return boolValue(l.num.Equal(r.num)), nil
	case tokenNeq:
		return boolValue(!l.num.Equal(r.num)), nil
	case tokenLt:
		return boolValue(l.num.LessThan(r.num)), nil
	case tokenLte:
		return boolValue(l.num.LessThanOrEqual(r.num)), nil
	case tokenGt:
		return boolValue(l.num.GreaterThan(r.num)), nil
	case tokenGte:
		return boolValue(l.num.GreaterThanOrEqual(r.num)), nil
	}
	return value{}, fmt.Errorf("%w: unknown operator", ErrTypeMismatch)
}

// coerceValue converts an event payload value into an expression value.
// JSON payloads deliver numbers as float64 or json.Number, and callers may
// also supply decimals or numeric strings.
func coerceValue(field string, raw any) (value, error) {
	switch v := raw.(type) {
	case bool:
		return boolValue(v), nil
	case decimal.Decimal:
		return numValue(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return value{}, fmt.Errorf("%w: field %q is not numeric", ErrTypeMismatch, field)
		}
		return numValue(d), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return value{}, fmt.Errorf("%w: field %q is not numeric", ErrTypeMismatch, field)
		}
		return numValue(d), nil
	case float64:
		return numValue(decimal.NewFromFloat(v)), nil
	case int:
		return numValue(decimal.NewFromInt(int64(v))), nil
	case int64:
		return numValue(decimal.NewFromInt(v)), nil
	}
	return value{}, fmt.Errorf("%w: field %q has unsupported type %T", ErrTypeMismatch, field, raw)
}
