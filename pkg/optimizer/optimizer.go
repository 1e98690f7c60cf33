// Package optimizer simplifies expression trees.
//
// Two passes run in order: identifier substitution replaces identifiers
// bound to plain values with constants, then constant folding evaluates
// every sub-tree whose operands are known. Both passes are pure: they
// return a new tree and leave their input untouched, except for the
// reference counts of substituted names.
package optimizer

import (
	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/naming"
)

const (
	// DefaultLevels is the default number of folding rounds.
	DefaultLevels = 3
	// MaxLevels is the maximum number of folding rounds.
	MaxLevels = 10
)

// Options configures the optimizer.
type Options struct {
	// SubstituteIdentifiers replaces plain-value identifiers with constants.
	SubstituteIdentifiers bool
	// FoldConstants enables constant folding.
	FoldConstants bool
	// Levels is the number of folding rounds, clamped to [0, MaxLevels].
	Levels int
}

// DefaultOptions returns the default optimizer configuration.
func DefaultOptions() Options {
	return Options{
		SubstituteIdentifiers: true,
		FoldConstants:         true,
		Levels:                DefaultLevels,
	}
}

// ClampLevels bounds n to [0, MaxLevels].
func ClampLevels(n int) int {
	return min(max(n, 0), MaxLevels)
}

// Optimize runs the enabled passes over root. Folding stops early once a
// round leaves the tree unchanged.
func Optimize(root ast.Node, names map[int]*naming.Details, opts Options) (ast.Node, error) {
	if opts.SubstituteIdentifiers {
		root = SubstituteIdentifiers(root, names)
	}
	if !opts.FoldConstants {
		return root, nil
	}
	for range ClampLevels(opts.Levels) {
		next, err := Fold(root)
		if err != nil {
			return nil, err
		}
		if next == root {
			break
		}
		root = next
	}
	return root, nil
}
