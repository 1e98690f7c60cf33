// Package ast defines the typed expression tree.
//
// The tree is a closed set of node variants: *Constant, *Identifier, *Unary,
// *Binary, *Array and *If. Every node owns its static type, computed by the
// checked constructors (NewConstant, NewBinary, ...) and never re-derived.
// Consumers traverse the tree with type switches; rewrites build new nodes
// through the With* helpers, which keep the static type of the original.
package ast

import (
	"github.com/sandrolain/exprlite/pkg/types"
)

// Node is an expression tree node.
type Node interface {
	// Type returns the static type of the node. For *Array it is the
	// element type.
	Type() types.Type
	node()
}

// Constant is a literal value in canonical representation.
type Constant struct {
	Value any
	typ   types.Type
}

// Identifier references a name by the id assigned during parsing.
type Identifier struct {
	ID  int
	typ types.Type
}

// Unary applies Op to Operand.
type Unary struct {
	Op      UnaryOp
	Operand Node
	typ     types.Type
}

// Binary applies Op to Left and Right.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
	typ   types.Type
}

// Array is a homogeneous, non-empty list. It only appears as the right
// operand of In and NotIn.
type Array struct {
	Elements []Node
	typ      types.Type
}

// If selects Then or Else depending on Cond.
type If struct {
	Cond Node
	Then Node
	Else Node
	typ  types.Type
}

func (n *Constant) Type() types.Type   { return n.typ }
func (n *Identifier) Type() types.Type { return n.typ }
func (n *Unary) Type() types.Type      { return n.typ }
func (n *Binary) Type() types.Type     { return n.typ }
func (n *Array) Type() types.Type      { return n.typ }
func (n *If) Type() types.Type         { return n.typ }

func (*Constant) node()   {}
func (*Identifier) node() {}
func (*Unary) node()      {}
func (*Binary) node()     {}
func (*Array) node()      {}
func (*If) node()         {}

// WithOperand returns a copy of n with a new operand of the same static type.
func (n *Unary) WithOperand(operand Node) *Unary {
	c := *n
	c.Operand = operand
	return &c
}

// WithOperands returns a copy of n with new operands of the same static types.
func (n *Binary) WithOperands(left, right Node) *Binary {
	c := *n
	c.Left, c.Right = left, right
	return &c
}

// WithElements returns a copy of n holding elems, which must share the
// element type of n and must not be empty.
func (n *Array) WithElements(elems []Node) *Array {
	c := *n
	c.Elements = elems
	return &c
}

// WithBranches returns a copy of n with new children of the same static types.
func (n *If) WithBranches(cond, then, els Node) *If {
	c := *n
	c.Cond, c.Then, c.Else = cond, then, els
	return &c
}

// IsConstant reports whether n is a *Constant.
func IsConstant(n Node) bool {
	_, ok := n.(*Constant)
	return ok
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	switch n := n.(type) {
	case *Unary:
		return 1 + Count(n.Operand)
	case *Binary:
		return 1 + Count(n.Left) + Count(n.Right)
	case *Array:
		total := 1
		for _, e := range n.Elements {
			total += Count(e)
		}
		return total
	case *If:
		return 1 + Count(n.Cond) + Count(n.Then) + Count(n.Else)
	case nil:
		return 0
	default:
		return 1
	}
}
