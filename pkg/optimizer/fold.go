package optimizer

import (
	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/evaluator"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Fold runs one bottom-up constant folding round. It returns root itself
// when nothing could be folded.
//
// A divisor that is, or folds to, a constant zero is rejected with
// types.ErrDivideByZero. The untaken branch of an if with a constant
// condition is discarded without being folded.
func Fold(root ast.Node) (ast.Node, error) {
	switch n := root.(type) {
	case *ast.Unary:
		return foldUnary(n)
	case *ast.Binary:
		return foldBinary(n)
	case *ast.Array:
		elems := make([]ast.Node, len(n.Elements))
		changed := false
		for i, e := range n.Elements {
			folded, err := Fold(e)
			if err != nil {
				return nil, err
			}
			elems[i] = folded
			changed = changed || folded != e
		}
		if !changed {
			return n, nil
		}
		return n.WithElements(elems), nil
	case *ast.If:
		return foldIf(n)
	}
	return root, nil
}

func foldUnary(n *ast.Unary) (ast.Node, error) {
	operand, err := Fold(n.Operand)
	if err != nil {
		return nil, err
	}
	if c, ok := operand.(*ast.Constant); ok {
		v, err := evaluator.Unary(n.Op, c.Value)
		if err != nil {
			return nil, err
		}
		return ast.Const(v, n.Type()), nil
	}
	if operand == n.Operand {
		return n, nil
	}
	return n.WithOperand(operand), nil
}

func foldBinary(n *ast.Binary) (ast.Node, error) {
	left, err := Fold(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := Fold(n.Right)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.In || n.Op == ast.NotIn {
		return foldMembership(n, left, right)
	}

	if (n.Op == ast.Divide || n.Op == ast.Remainder) && ast.IsZeroConstant(right) {
		return nil, ast.DivideByZero()
	}

	lc, lok := left.(*ast.Constant)
	rc, rok := right.(*ast.Constant)
	if lok && rok {
		v, err := evaluator.Binary(n.Op, lc.Value, rc.Value)
		if err != nil {
			return nil, err
		}
		return ast.Const(v, n.Type()), nil
	}

	if left == n.Left && right == n.Right {
		return n, nil
	}
	return n.WithOperands(left, right), nil
}

// foldMembership folds x in [..] and x !in [..] for a constant x. A
// matching constant element decides the result, non-matching constant
// elements are dropped and an emptied list folds to false for in and
// true for !in.
func foldMembership(n *ast.Binary, left, right ast.Node) (ast.Node, error) {
	arr := right.(*ast.Array)
	lc, ok := left.(*ast.Constant)
	if !ok {
		if left == n.Left && right == n.Right {
			return n, nil
		}
		return n.WithOperands(left, right), nil
	}

	kept := make([]ast.Node, 0, len(arr.Elements))
	for _, e := range arr.Elements {
		ec, ok := e.(*ast.Constant)
		if !ok {
			kept = append(kept, e)
			continue
		}
		if types.Equal(ec.Value, lc.Value) {
			return ast.Const(n.Op == ast.In, types.Boolean), nil
		}
	}

	if len(kept) == 0 {
		return ast.Const(n.Op == ast.NotIn, types.Boolean), nil
	}
	if len(kept) == len(arr.Elements) && left == n.Left && right == n.Right {
		return n, nil
	}
	if len(kept) != len(arr.Elements) {
		right = arr.WithElements(kept)
	}
	return n.WithOperands(left, right), nil
}

func foldIf(n *ast.If) (ast.Node, error) {
	cond, err := Fold(n.Cond)
	if err != nil {
		return nil, err
	}
	if c, ok := cond.(*ast.Constant); ok {
		if c.Value == true {
			return Fold(n.Then)
		}
		return Fold(n.Else)
	}

	then, err := Fold(n.Then)
	if err != nil {
		return nil, err
	}
	els, err := Fold(n.Else)
	if err != nil {
		return nil, err
	}
	if cond == n.Cond && then == n.Then && els == n.Else {
		return n, nil
	}
	return n.WithBranches(cond, then, els), nil
}
