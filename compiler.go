package exprlite

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/cache"
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/optimizer"
	"github.com/sandrolain/exprlite/pkg/parser"
	"github.com/sandrolain/exprlite/pkg/scanner"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Compiler parses expressions with a fixed configuration. It is safe for
// concurrent use.
type Compiler struct {
	opts   Options
	parser *parser.Parser
	cache  *cache.Cache[*parser.Result]
	logger *slog.Logger
	err    error
}

// New creates a Compiler with default options: identifier substitution
// and constant folding on, three folding rounds, no cache.
func New(opts ...Option) *Compiler {
	options := Options{
		Optimizer: optimizer.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	c := &Compiler{opts: options, logger: options.Logger}

	providers := options.Providers
	if len(options.Values) > 0 {
		values, err := naming.Values(options.Values)
		if err != nil {
			c.err = err
		}
		providers = append(providers[:len(providers):len(providers)], values)
	}

	sc := scanner.New(
		scanner.WithIgnoreWhitespace(options.IgnoreWhitespace),
		scanner.WithMaxIdentifierLength(options.MaxIdentifierLength),
		scanner.WithConverter(options.Converter),
	)
	c.parser = parser.New(
		parser.WithProviders(providers...),
		parser.WithScanner(sc),
		parser.WithIdentifierSubstitution(options.Optimizer.SubstituteIdentifiers),
		parser.WithConstantFolding(options.Optimizer.FoldConstants),
		parser.WithOptimizationLevels(options.Optimizer.Levels),
		parser.WithLogger(options.Logger),
	)

	if options.Caching {
		c.cache = options.Cache
		if c.cache == nil {
			c.cache = cache.New[*parser.Result](options.CacheSize)
		}
	}
	return c
}

// Options returns the Compiler configuration.
func (c *Compiler) Options() Options {
	return c.opts
}

// Parse parses src into a Program.
func (c *Compiler) Parse(src string) (*Program, error) {
	if c.err != nil {
		return nil, c.err
	}

	hit := false
	var res *parser.Result
	var err error
	if c.cache != nil {
		hit = true
		res, err = c.cache.GetOrCompile(src, func() (*parser.Result, error) {
			hit = false
			return c.parser.ParseString(src, c.opts.Name)
		})
	} else {
		res, err = c.parser.ParseString(src, c.opts.Name)
	}
	if err != nil {
		return nil, err
	}

	p := &Program{id: uuid.New(), source: src, result: res}
	if c.opts.Debug {
		c.logger.Debug("program parsed",
			slog.String("program", p.id.String()),
			slog.String("source", src),
			slog.Int("nodes", ast.Count(res.Root)),
			slog.Int("names", len(res.Names)),
			slog.String("cache", cacheState(c.cache != nil, hit)))
	}
	return p, nil
}

// Invalidate drops the cached parse result of src.
func (c *Compiler) Invalidate(src string) {
	if c.cache != nil {
		c.cache.Invalidate(src)
	}
}

// Cache returns the parse result cache, or nil when caching is off.
func (c *Compiler) Cache() *cache.Cache[*parser.Result] {
	return c.cache
}

func cacheState(enabled, hit bool) string {
	switch {
	case !enabled:
		return "off"
	case hit:
		return "hit"
	default:
		return "miss"
	}
}

// Program is a parsed and optimized expression, ready for code generation
// with Func or FuncOf.
type Program struct {
	id     uuid.UUID
	source string
	result *parser.Result
}

// ID identifies the program in log records.
func (p *Program) ID() uuid.UUID {
	return p.id
}

// Source returns the expression source text.
func (p *Program) Source() string {
	return p.source
}

// Type returns the static type of the expression.
func (p *Program) Type() types.Type {
	return p.result.Type()
}

// Result returns the parse result.
func (p *Program) Result() *parser.Result {
	return p.result
}

// String renders the optimized tree.
func (p *Program) String() string {
	return p.result.String()
}
