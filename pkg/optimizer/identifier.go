package optimizer

import (
	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/naming"
)

// SubstituteIdentifiers replaces every identifier bound to a plain value
// with a constant and decrements the reference count of its name.
func SubstituteIdentifiers(root ast.Node, names map[int]*naming.Details) ast.Node {
	s := substituter{names: names}
	return s.rewrite(root)
}

type substituter struct {
	names map[int]*naming.Details
}

func (s substituter) rewrite(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.Identifier:
		d, ok := s.names[n.ID]
		if !ok || d.Info.Kind != naming.Plain {
			return n
		}
		d.Refs--
		return ast.Const(d.Info.Value, n.Type())

	case *ast.Unary:
		operand := s.rewrite(n.Operand)
		if operand == n.Operand {
			return n
		}
		return n.WithOperand(operand)

	case *ast.Binary:
		left, right := s.rewrite(n.Left), s.rewrite(n.Right)
		if left == n.Left && right == n.Right {
			return n
		}
		return n.WithOperands(left, right)

	case *ast.Array:
		elems, changed := rewriteAll(n.Elements, s.rewrite)
		if !changed {
			return n
		}
		return n.WithElements(elems)

	case *ast.If:
		cond, then, els := s.rewrite(n.Cond), s.rewrite(n.Then), s.rewrite(n.Else)
		if cond == n.Cond && then == n.Then && els == n.Else {
			return n
		}
		return n.WithBranches(cond, then, els)
	}
	return node
}

func rewriteAll(nodes []ast.Node, fn func(ast.Node) ast.Node) ([]ast.Node, bool) {
	out := make([]ast.Node, len(nodes))
	changed := false
	for i, n := range nodes {
		out[i] = fn(n)
		if out[i] != n {
			changed = true
		}
	}
	return out, changed
}
