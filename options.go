package exprlite

import (
	"log/slog"

	"github.com/sandrolain/exprlite/pkg/cache"
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/optimizer"
	"github.com/sandrolain/exprlite/pkg/parser"
	"github.com/sandrolain/exprlite/pkg/token"
)

// Options holds Compiler configuration.
type Options struct {
	// Name is the name the expression is defined under. References to it
	// are rejected as self references.
	Name string
	// Providers resolve identifiers, in order.
	Providers []naming.Provider
	// Values are plain bindings tried after Providers.
	Values map[string]any

	// IgnoreWhitespace drops whitespace tokens while scanning.
	IgnoreWhitespace bool
	// MaxIdentifierLength limits identifier length. Zero uses the scanner
	// default.
	MaxIdentifierLength int
	// Converter decodes literal lexemes. Nil uses token.DefaultConverter.
	Converter token.Converter

	// Optimizer configures identifier substitution and constant folding.
	Optimizer optimizer.Options

	// Caching keeps parse results keyed by source.
	Caching bool
	// CacheSize is the capacity of the cache created when Caching is set.
	CacheSize int
	// Cache is a cache to use instead of a private one. Share a cache only
	// between Compilers with the same configuration.
	Cache *cache.Cache[*parser.Result]

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
	// Debug enables debug records.
	Debug bool
}

// Option configures a Compiler.
type Option func(*Options)

// WithName sets the name the expression is defined under.
func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

// WithProviders appends name providers.
func WithProviders(providers ...naming.Provider) Option {
	return func(opts *Options) {
		opts.Providers = append(opts.Providers, providers...)
	}
}

// WithValues adds plain bindings. Numeric values are widened to decimals.
func WithValues(values map[string]any) Option {
	return func(opts *Options) {
		if opts.Values == nil {
			opts.Values = make(map[string]any, len(values))
		}
		for k, v := range values {
			opts.Values[k] = v
		}
	}
}

// WithIgnoreWhitespace drops whitespace tokens while scanning.
func WithIgnoreWhitespace(ignore bool) Option {
	return func(opts *Options) {
		opts.IgnoreWhitespace = ignore
	}
}

// WithMaxIdentifierLength sets the identifier length limit.
func WithMaxIdentifierLength(n int) Option {
	return func(opts *Options) {
		opts.MaxIdentifierLength = n
	}
}

// WithConverter sets the literal converter.
func WithConverter(c token.Converter) Option {
	return func(opts *Options) {
		opts.Converter = c
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

// WithOptimizationLevels sets the number of folding rounds, clamped to
// [0, 10].
func WithOptimizationLevels(n int) Option {
	return func(opts *Options) {
		opts.Optimizer.Levels = optimizer.ClampLevels(n)
	}
}

// WithCaching enables the parse result cache.
func WithCaching(enable bool) Option {
	return func(opts *Options) {
		opts.Caching = enable
	}
}

// WithCacheSize sets the capacity of the parse result cache.
func WithCacheSize(size int) Option {
	return func(opts *Options) {
		opts.CacheSize = size
	}
}

// WithCache uses c as the parse result cache and enables caching.
func WithCache(c *cache.Cache[*parser.Result]) Option {
	return func(opts *Options) {
		opts.Cache = c
		opts.Caching = c != nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithDebug enables debug records.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Debug = enabled
	}
}
