package ast

import (
	"fmt"

	"github.com/sandrolain/exprlite/pkg/types"
)

// Checked constructors. Failures are parser errors with an unknown
// position (-1); the parser fills in the offending token.

// Const builds a constant from a canonical value of type t. The caller
// guarantees that v is the canonical representation of t.
func Const(v any, t types.Type) *Constant {
	return &Constant{Value: v, typ: t}
}

// NewConstant builds a constant from any supported Go value. Numeric kinds
// are widened to decimal.Decimal.
func NewConstant(v any) (*Constant, error) {
	c, t, err := types.Canonical(v)
	if err != nil {
		return nil, types.Expected("<constant>", fmt.Sprintf("%T", v), -1).WithCause(err)
	}
	return Const(c, t), nil
}

// NewIdentifier builds a reference to the name with the given id.
func NewIdentifier(id int, t types.Type) (*Identifier, error) {
	if !t.Valid() {
		return nil, types.Errorf(types.ErrMalformedNameInfo, -1, "identifier %d has an invalid static type", id)
	}
	return &Identifier{ID: id, typ: t}, nil
}

// NewUnary builds a unary expression.
func NewUnary(op UnaryOp, operand Node) (*Unary, error) {
	var want types.Type
	switch op {
	case Plus, Negate:
		want = types.Number
	case Not:
		want = types.Boolean
	default:
		return nil, types.Expected("<unary-operator>", op.String(), -1)
	}
	if err := expect(want, operand); err != nil {
		return nil, err
	}
	return &Unary{Op: op, Operand: operand, typ: want}, nil
}

// NewBinary builds a binary expression, checking operand types and
// rejecting a constant zero divisor.
func NewBinary(op BinaryOp, left, right Node) (*Binary, error) {
	if op == In || op == NotIn {
		return newMembership(op, left, right)
	}

	var operand, result types.Type
	switch op {
	case And, Or:
		operand, result = types.Boolean, types.Boolean
	case Add, Subtract, Multiply, Divide, Remainder:
		operand, result = types.Number, types.Number
	case Greater, GreaterOrEqual, Less, LessOrEqual:
		operand, result = types.Number, types.Boolean
	case Append:
		operand, result = types.Text, types.Text
	case Have, NotHave:
		operand, result = types.Text, types.Boolean
	case Equal, NotEqual:
		if err := notArray(left, right); err != nil {
			return nil, err
		}
		if left.Type() != right.Type() {
			return nil, types.Expected(left.Type().Label(), right.Type().Label(), -1)
		}
		return &Binary{Op: op, Left: left, Right: right, typ: types.Boolean}, nil
	default:
		return nil, types.Expected("<binary-operator>", op.String(), -1)
	}

	if err := expect(operand, left); err != nil {
		return nil, err
	}
	if err := expect(operand, right); err != nil {
		return nil, err
	}
	if (op == Divide || op == Remainder) && IsZeroConstant(right) {
		return nil, DivideByZero()
	}
	return &Binary{Op: op, Left: left, Right: right, typ: result}, nil
}

func newMembership(op BinaryOp, left, right Node) (*Binary, error) {
	if err := notArray(left); err != nil {
		return nil, err
	}
	arr, ok := right.(*Array)
	if !ok {
		return nil, types.Expected("<array>", Describe(right), -1)
	}
	if arr.Type() != left.Type() {
		return nil, types.Expected(left.Type().Label(), arr.Type().Label(), -1)
	}
	return &Binary{Op: op, Left: left, Right: right, typ: types.Boolean}, nil
}

// NewArray builds a non-empty homogeneous array.
func NewArray(elems []Node) (*Array, error) {
	if len(elems) == 0 {
		return nil, types.NewError(types.ErrEmptyArray, "empty array is not allowed", -1)
	}
	if err := notArray(elems...); err != nil {
		return nil, err
	}
	first := elems[0].Type()
	for _, e := range elems[1:] {
		if e.Type() != first {
			return nil, types.Expected(first.Label(), e.Type().Label(), -1)
		}
	}
	return &Array{Elements: elems, typ: first}, nil
}

// NewIf builds a conditional expression.
func NewIf(cond, then, els Node) (*If, error) {
	if err := expect(types.Boolean, cond); err != nil {
		return nil, err
	}
	if err := notArray(then, els); err != nil {
		return nil, err
	}
	if then.Type() != els.Type() {
		return nil, types.NewError(types.ErrIfBranchTypes, "true/false expressions must have same static type", -1)
	}
	return &If{Cond: cond, Then: then, Else: els, typ: then.Type()}, nil
}

// DivideByZero returns the error raised for a constant zero divisor.
func DivideByZero() *types.Error {
	return types.NewError(types.ErrDivideByZero, "a division by zero will result in undefined behavior", -1)
}

// IsZeroConstant reports whether n is the numeric constant zero.
func IsZeroConstant(n Node) bool {
	c, ok := n.(*Constant)
	return ok && types.IsZero(c.Value)
}

func expect(want types.Type, n Node) error {
	if _, isArray := n.(*Array); isArray || n.Type() != want {
		return types.Expected(want.Label(), Describe(n), -1)
	}
	return nil
}

func notArray(nodes ...Node) error {
	for _, n := range nodes {
		if _, ok := n.(*Array); ok {
			return types.Expected(n.Type().Label(), Describe(n), -1)
		}
	}
	return nil
}
