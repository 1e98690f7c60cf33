package generator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/evaluator"
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/types"
)

// code is a lowered node. The argument is the input value, nil when there
// is none.
type code = func(in any) any

type lowerer struct {
	names map[int]*naming.Details
}

// lowerAs lowers n to a closure returning T. Constants are captured as
// values.
func lowerAs[T any](l *lowerer, n ast.Node) func(any) T {
	if c, ok := n.(*ast.Constant); ok {
		v := c.Value.(T)
		return func(any) T { return v }
	}
	f := l.lower(n)
	return func(in any) T { return f(in).(T) }
}

func (l *lowerer) lower(n ast.Node) code {
	switch n := n.(type) {
	case *ast.Constant:
		v := n.Value
		return func(any) any { return v }
	case *ast.Identifier:
		return l.identifier(n)
	case *ast.Unary:
		return l.unary(n)
	case *ast.Binary:
		return l.binary(n)
	case *ast.If:
		cond := lowerAs[bool](l, n.Cond)
		then, els := l.lower(n.Then), l.lower(n.Else)
		return func(in any) any {
			if cond(in) {
				return then(in)
			}
			return els(in)
		}
	}
	panic(fmt.Sprintf("generator: unexpected node %T", n))
}

func (l *lowerer) identifier(n *ast.Identifier) code {
	d, ok := l.names[n.ID]
	if !ok {
		panic(types.Errorf(types.ErrMissingBinding, -1, "identifier %d has no binding", n.ID))
	}
	info := d.Info
	switch info.Kind {
	case naming.Plain:
		v := info.Value
		return func(any) any { return v }
	case naming.Member:
		get := info.Member.Get
		if info.Member.Static {
			return func(any) any { return get(nil) }
		}
		return get
	case naming.Compiled:
		return info.Func.Call
	}
	panic(types.Errorf(types.ErrMalformedNameInfo, -1, "identifier '%s' has unexpected binding kind %s", info.Name, info.Kind))
}

func (l *lowerer) unary(n *ast.Unary) code {
	switch n.Op {
	case ast.Plus:
		return l.lower(n.Operand)
	case ast.Negate:
		x := lowerAs[decimal.Decimal](l, n.Operand)
		return func(in any) any { return x(in).Neg() }
	default:
		x := lowerAs[bool](l, n.Operand)
		return func(in any) any { return !x(in) }
	}
}

func (l *lowerer) binary(n *ast.Binary) code {
	switch n.Op {
	case ast.And:
		a, b := lowerAs[bool](l, n.Left), lowerAs[bool](l, n.Right)
		return func(in any) any { return a(in) && b(in) }
	case ast.Or:
		a, b := lowerAs[bool](l, n.Left), lowerAs[bool](l, n.Right)
		return func(in any) any { return a(in) || b(in) }

	case ast.Equal, ast.NotEqual:
		a, b := l.lower(n.Left), l.lower(n.Right)
		negate := n.Op == ast.NotEqual
		return func(in any) any { return types.Equal(a(in), b(in)) != negate }

	case ast.In, ast.NotIn:
		return l.membership(n)

	case ast.Append:
		a, b := lowerAs[string](l, n.Left), lowerAs[string](l, n.Right)
		return func(in any) any { return a(in) + b(in) }
	case ast.Have, ast.NotHave:
		a, b := lowerAs[string](l, n.Left), lowerAs[string](l, n.Right)
		negate := n.Op == ast.NotHave
		return func(in any) any { return strings.Contains(a(in), b(in)) != negate }
	}
	return l.arithmetic(n)
}

func (l *lowerer) arithmetic(n *ast.Binary) code {
	a, b := lowerAs[decimal.Decimal](l, n.Left), lowerAs[decimal.Decimal](l, n.Right)
	switch n.Op {
	case ast.Add:
		return func(in any) any { return a(in).Add(b(in)) }
	case ast.Subtract:
		return func(in any) any { return a(in).Sub(b(in)) }
	case ast.Multiply:
		return func(in any) any { return a(in).Mul(b(in)) }
	case ast.Divide:
		return func(in any) any { return types.Div(a(in), nonZero(b(in))) }
	case ast.Remainder:
		return func(in any) any { return types.Mod(a(in), nonZero(b(in))) }
	case ast.Greater:
		return func(in any) any { return a(in).GreaterThan(b(in)) }
	case ast.GreaterOrEqual:
		return func(in any) any { return a(in).GreaterThanOrEqual(b(in)) }
	case ast.Less:
		return func(in any) any { return a(in).LessThan(b(in)) }
	case ast.LessOrEqual:
		return func(in any) any { return a(in).LessThanOrEqual(b(in)) }
	}
	panic(fmt.Sprintf("generator: unexpected operator %d", n.Op))
}

func nonZero(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		panic(types.ErrDivisionByZero)
	}
	return d
}

// membership lowers x in [..]. An all-constant list is built once.
func (l *lowerer) membership(n *ast.Binary) code {
	needle := l.lower(n.Left)
	negate := n.Op == ast.NotIn
	arr := n.Right.(*ast.Array)

	if slices.IndexFunc(arr.Elements, func(e ast.Node) bool { return !ast.IsConstant(e) }) < 0 {
		list := make([]any, len(arr.Elements))
		for i, e := range arr.Elements {
			list[i] = e.(*ast.Constant).Value
		}
		if t, ok := timestamps(list); ok {
			return func(in any) any {
				v := needle(in).(time.Time)
				return slices.ContainsFunc(t, v.Equal) != negate
			}
		}
		return func(in any) any { return evaluator.Contains(list, needle(in)) != negate }
	}

	elems := make([]code, len(arr.Elements))
	for i, e := range arr.Elements {
		elems[i] = l.lower(e)
	}
	return func(in any) any {
		v := needle(in)
		for _, e := range elems {
			if types.Equal(e(in), v) {
				return !negate
			}
		}
		return negate
	}
}

func timestamps(list []any) ([]time.Time, bool) {
	out := make([]time.Time, len(list))
	for i, v := range list {
		t, ok := v.(time.Time)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func sortedIDs(names map[int]*naming.Details) []int {
	return slices.Sorted(maps.Keys(names))
}
