// Package evaluator interprets expression trees directly.
//
// The evaluator walks a parsed tree and computes its value without
// generating code. It is used for one-shot evaluation, where generating a
// closure would not pay off, and it shares its operator semantics (Unary,
// Binary) with the constant folder so that folding never changes a result.
//
// # Example
//
//	res, err := p.ParseString(`price * (1 + rate)`, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	value, err := evaluator.New().Eval(ctx, res.Root, res.Names, order)
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/naming"
)

// ErrMaxDepth is returned when the tree is nested deeper than MaxDepth.
var ErrMaxDepth = errors.New("maximum evaluation depth exceeded")

var defaultMaxDepth = 10000

// Evaluator evaluates expression trees.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits recursion depth. Zero disables the limit.
	MaxDepth int
	// Timeout sets evaluation timeout. Zero disables it.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: defaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
	}
}

// Eval evaluates root against input. names is the used-name table of the
// parse that produced root. A node type Eval does not know is a programming
// error and panics.
func (e *Evaluator) Eval(ctx context.Context, root ast.Node, names map[int]*naming.Details, input any) (any, error) {
	if root == nil {
		return nil, fmt.Errorf("invalid expression")
	}

	// Apply timeout if configured
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	evalCtx := acquireEvalCtx(input, names)
	defer releaseEvalCtx(evalCtx)
	result, err := e.evalNode(ctx, root, evalCtx)
	if err != nil {
		return nil, err
	}

	if e.opts.Debug {
		e.logger.Debug("evaluated expression",
			slog.String("tree", ast.String(root)),
			slog.Any("result", result))
	}
	return result, nil
}

func (e *Evaluator) evalNode(ctx context.Context, node ast.Node, evalCtx *EvalContext) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	evalCtx.depth++
	defer func() { evalCtx.depth-- }()
	if e.opts.MaxDepth > 0 && evalCtx.depth > e.opts.MaxDepth {
		return nil, ErrMaxDepth
	}

	switch n := node.(type) {
	case *ast.Constant:
		return n.Value, nil

	case *ast.Identifier:
		return evalCtx.lookup(n.ID)

	case *ast.Unary:
		v, err := e.evalNode(ctx, n.Operand, evalCtx)
		if err != nil {
			return nil, err
		}
		return Unary(n.Op, v)

	case *ast.Binary:
		return e.evalBinary(ctx, n, evalCtx)

	case *ast.Array:
		list := make([]any, len(n.Elements))
		for i, el := range n.Elements {
			v, err := e.evalNode(ctx, el, evalCtx)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil

	case *ast.If:
		cond, err := e.evalNode(ctx, n.Cond, evalCtx)
		if err != nil {
			return nil, err
		}
		b, err := asBool(cond)
		if err != nil {
			return nil, err
		}
		if b {
			return e.evalNode(ctx, n.Then, evalCtx)
		}
		return e.evalNode(ctx, n.Else, evalCtx)
	}

	panic(fmt.Sprintf("evaluator: unexpected node %T", node))
}

func (e *Evaluator) evalBinary(ctx context.Context, n *ast.Binary, evalCtx *EvalContext) (any, error) {
	left, err := e.evalNode(ctx, n.Left, evalCtx)
	if err != nil {
		return nil, err
	}

	// And/Or only evaluate the right operand when needed.
	if n.Op == ast.And || n.Op == ast.Or {
		l, err := asBool(left)
		if err != nil {
			return nil, err
		}
		if l == (n.Op == ast.Or) {
			return l, nil
		}
		right, err := e.evalNode(ctx, n.Right, evalCtx)
		if err != nil {
			return nil, err
		}
		return asBool(right)
	}

	right, err := e.evalNode(ctx, n.Right, evalCtx)
	if err != nil {
		return nil, err
	}
	return Binary(n.Op, left, right)
}

// WithMaxDepth sets the recursion depth limit.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}
