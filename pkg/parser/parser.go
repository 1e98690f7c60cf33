// Package parser builds typed expression trees from tokens.
//
// Parsing runs in three steps:
//   - Expansion: identifiers bound to expression source are replaced, in the
//     token stream, by the parenthesised tokens of their definition
//   - Grammar: a recursive descent parser builds the tree, type checking every
//     node as it is constructed
//   - Optimization: identifier substitution and constant folding
//
// # Example
//
//	p := parser.New(parser.WithProviders(names))
//	res, err := p.ParseString(`price * (1 + rate)`, "")
//	if err != nil {
//	    var perr *types.Error
//	    if errors.As(err, &perr) {
//	        fmt.Printf("parse error at position %d\n", perr.Position)
//	    }
//	    return
//	}
//	fmt.Println(res.Type(), ast.String(res.Root))
package parser

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/optimizer"
	"github.com/sandrolain/exprlite/pkg/scanner"
	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Options holds parser configuration.
type Options struct {
	// Providers resolve identifiers, in order.
	Providers []naming.Provider
	// Scanner tokenizes source text and expression bindings.
	Scanner *scanner.Scanner
	// Optimizer configures the passes run after the grammar.
	Optimizer optimizer.Options
	// Logger receives debug records about finished parses.
	Logger *slog.Logger
}

// Option configures parser behavior.
type Option func(*Options)

// WithProviders appends name providers.
func WithProviders(providers ...naming.Provider) Option {
	return func(opts *Options) {
		opts.Providers = append(opts.Providers, providers...)
	}
}

// WithScanner sets the scanner used by ParseString and for expression
// bindings.
func WithScanner(sc *scanner.Scanner) Option {
	return func(opts *Options) {
		opts.Scanner = sc
	}
}

// WithIdentifierSubstitution enables or disables replacing plain-value
// identifiers with constants.
func WithIdentifierSubstitution(enable bool) Option {
	return func(opts *Options) {
		opts.Optimizer.SubstituteIdentifiers = enable
	}
}

// WithConstantFolding enables or disables constant folding.
func WithConstantFolding(enable bool) Option {
	return func(opts *Options) {
		opts.Optimizer.FoldConstants = enable
	}
}

// WithOptimizationLevels sets the number of folding rounds. It is clamped
// to [0, optimizer.MaxLevels].
func WithOptimizationLevels(n int) Option {
	return func(opts *Options) {
		opts.Optimizer.Levels = optimizer.ClampLevels(n)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Parser turns tokens into a Result. It holds no per-parse state and is
// safe for concurrent use.
type Parser struct {
	opts Options
}

// New creates a parser with default options.
func New(opts ...Option) *Parser {
	options := Options{
		Optimizer: optimizer.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Scanner == nil {
		options.Scanner = scanner.New()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	options.Optimizer.Levels = optimizer.ClampLevels(options.Optimizer.Levels)
	return &Parser{opts: options}
}

// Options returns the parser configuration.
func (p *Parser) Options() Options {
	return p.opts
}

// Result is a parsed, optimized expression.
type Result struct {
	Root ast.Node
	// Names holds the identifiers the tree still refers to, by ID.
	Names map[int]*naming.Details
}

// Type returns the static type of the expression.
func (r *Result) Type() types.Type {
	return r.Root.Type()
}

// Lookup returns the details of the name with the given ID.
func (r *Result) Lookup(id int) (*naming.Details, bool) {
	d, ok := r.Names[id]
	return d, ok
}

// IDs returns the IDs of the referenced names in ascending order.
func (r *Result) IDs() []int {
	return slices.Sorted(maps.Keys(r.Names))
}

func (r *Result) String() string {
	return ast.String(r.Root)
}

// ParseString scans src with the configured scanner and parses it.
func (p *Parser) ParseString(src, self string) (*Result, error) {
	tokens, err := p.opts.Scanner.Tokens(src)
	if err != nil {
		return nil, err
	}
	return p.Parse(tokens, self)
}

// Parse parses tokens. self, when not empty, is the name the expression is
// being defined under: any reference to it is a self reference.
func (p *Parser) Parse(tokens []token.Token, self string) (*Result, error) {
	st := newState(p, self)

	expanded, err := st.expand(tokens)
	if err != nil {
		return nil, err
	}
	st.tokens = expanded

	root, err := st.parseExpression()
	if err != nil {
		return nil, err
	}
	if !st.eos() {
		return nil, types.NewError(types.ErrExtraTokens,
			"extra token(s) found when expecting end of stream", st.current().Pos).WithToken(st.current().Lexeme)
	}

	byID := st.byID()
	root, err = optimizer.Optimize(root, byID, p.opts.Optimizer)
	if err != nil {
		return nil, err
	}

	res := &Result{Root: root, Names: used(root, byID)}
	p.opts.Logger.Debug("expression parsed",
		slog.Int("tokens", len(expanded)),
		slog.Int("nodes", ast.Count(root)),
		slog.Int("identifiers", len(res.Names)),
		slog.String("type", root.Type().String()))
	return res, nil
}

// used recounts references in the final tree and keeps the names that are
// still referenced.
func used(root ast.Node, names map[int]*naming.Details) map[int]*naming.Details {
	for _, d := range names {
		d.Refs = 0
	}
	countRefs(root, names)

	out := make(map[int]*naming.Details)
	for id, d := range names {
		if d.Refs > 0 {
			out[id] = d
		}
	}
	return out
}

func countRefs(n ast.Node, names map[int]*naming.Details) {
	switch n := n.(type) {
	case *ast.Identifier:
		if d, ok := names[n.ID]; ok {
			d.Refs++
		}
	case *ast.Unary:
		countRefs(n.Operand, names)
	case *ast.Binary:
		countRefs(n.Left, names)
		countRefs(n.Right, names)
	case *ast.Array:
		for _, e := range n.Elements {
			countRefs(e, names)
		}
	case *ast.If:
		countRefs(n.Cond, names)
		countRefs(n.Then, names)
		countRefs(n.Else, names)
	}
}
