package evaluator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Unary applies op to a canonical operand. It panics on an operator it
// does not know.
func Unary(op ast.UnaryOp, v any) (any, error) {
	switch op {
	case ast.Plus:
		d, err := asNumber(v)
		if err != nil {
			return nil, err
		}
		return d, nil
	case ast.Negate:
		d, err := asNumber(v)
		if err != nil {
			return nil, err
		}
		return d.Neg(), nil
	case ast.Not:
		b, err := asBool(v)
		if err != nil {
			return nil, err
		}
		return !b, nil
	}
	panic(fmt.Sprintf("evaluator: unexpected unary operator %d", op))
}

// Binary applies op to canonical operands. For In and NotIn the right
// operand is the []any of the evaluated array elements. A zero divisor
// yields types.ErrDivisionByZero. It panics on an operator it does not
// know.
func Binary(op ast.BinaryOp, left, right any) (any, error) {
	switch op {
	case ast.Equal:
		return types.Equal(left, right), nil
	case ast.NotEqual:
		return !types.Equal(left, right), nil
	case ast.In, ast.NotIn:
		list, ok := right.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected a list, got %T", op, right)
		}
		return Contains(list, left) != (op == ast.NotIn), nil
	case ast.And, ast.Or:
		l, err := asBool(left)
		if err != nil {
			return nil, err
		}
		r, err := asBool(right)
		if err != nil {
			return nil, err
		}
		if op == ast.And {
			return l && r, nil
		}
		return l || r, nil
	case ast.Append, ast.Have, ast.NotHave:
		l, err := asText(left)
		if err != nil {
			return nil, err
		}
		r, err := asText(right)
		if err != nil {
			return nil, err
		}
		if op == ast.Append {
			return l + r, nil
		}
		return strings.Contains(l, r) != (op == ast.NotHave), nil
	}

	l, err := asNumber(left)
	if err != nil {
		return nil, err
	}
	r, err := asNumber(right)
	if err != nil {
		return nil, err
	}
	return Arithmetic(op, l, r)
}

// Arithmetic applies a numeric or relational operator.
func Arithmetic(op ast.BinaryOp, l, r decimal.Decimal) (any, error) {
	switch op {
	case ast.Add:
		return l.Add(r), nil
	case ast.Subtract:
		return l.Sub(r), nil
	case ast.Multiply:
		return l.Mul(r), nil
	case ast.Divide:
		if r.IsZero() {
			return nil, types.ErrDivisionByZero
		}
		return types.Div(l, r), nil
	case ast.Remainder:
		if r.IsZero() {
			return nil, types.ErrDivisionByZero
		}
		return types.Mod(l, r), nil
	case ast.Greater:
		return l.GreaterThan(r), nil
	case ast.GreaterOrEqual:
		return l.GreaterThanOrEqual(r), nil
	case ast.Less:
		return l.LessThan(r), nil
	case ast.LessOrEqual:
		return l.LessThanOrEqual(r), nil
	}
	panic(fmt.Sprintf("evaluator: unexpected binary operator %d", op))
}

// Contains reports whether list holds a value equal to v.
func Contains(list []any, v any) bool {
	for _, e := range list {
		if types.Equal(e, v) {
			return true
		}
	}
	return false
}

func asNumber(v any) (decimal.Decimal, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return decimal.Decimal{}, operandError(types.Number, v)
	}
	return d, nil
}

func asText(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", operandError(types.Text, v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, operandError(types.Boolean, v)
	}
	return b, nil
}

func operandError(want types.Type, got any) error {
	return fmt.Errorf("expected %s operand, got %T", want, got)
}
