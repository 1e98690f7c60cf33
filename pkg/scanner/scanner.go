// Package scanner converts expression source text into tokens.
//
// A Scanner is immutable once built and can be shared: every call to Scan
// starts a fresh pass over its input.
//
//	sc := scanner.New(scanner.WithIgnoreWhitespace(true))
//	for tok, err := range sc.Scan(`price * (1 + rate)`) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(tok)
//	}
package scanner

import (
	"iter"
	"strings"

	"github.com/sandrolain/exprlite/pkg/token"
)

// DefaultMaxIdentifierLength is the identifier length limit used when none is set.
const DefaultMaxIdentifierLength = 255

// Options configures a Scanner.
type Options struct {
	// IgnoreWhitespace suppresses whitespace tokens.
	IgnoreWhitespace bool
	// MaxIdentifierLength is the maximum identifier length in characters.
	// Keywords are not subject to the limit. Defaults to 255.
	MaxIdentifierLength int
	// Converter decodes literal lexemes. Defaults to token.DefaultConverter.
	Converter token.Converter
}

// Option configures scanner behavior.
type Option func(*Options)

// WithIgnoreWhitespace enables or disables whitespace tokens.
func WithIgnoreWhitespace(ignore bool) Option {
	return func(opts *Options) {
		opts.IgnoreWhitespace = ignore
	}
}

// WithMaxIdentifierLength sets the identifier length limit.
// Values <= 0 select DefaultMaxIdentifierLength.
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

// Scanner produces tokens from source text.
type Scanner struct {
	opts Options
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	options := Options{
		MaxIdentifierLength: DefaultMaxIdentifierLength,
		Converter:           token.DefaultConverter,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxIdentifierLength <= 0 {
		options.MaxIdentifierLength = DefaultMaxIdentifierLength
	}
	if options.Converter == nil {
		options.Converter = token.DefaultConverter
	}
	return &Scanner{opts: options}
}

// Options returns the scanner configuration.
func (s *Scanner) Options() Options {
	return s.opts
}

// Scan returns the lazy token sequence of src. Empty and whitespace-only
// input yields nothing. The sequence ends after the first error, which is
// always a *types.Error.
func (s *Scanner) Scan(src string) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		if strings.TrimSpace(src) == "" {
			return
		}
		l := newLexer(src, &s.opts)
		for {
			tok, ok, err := l.next()
			if err != nil {
				yield(token.Token{}, err)
				return
			}
			if !ok {
				return
			}
			if tok.Group == token.Whitespace && s.opts.IgnoreWhitespace {
				continue
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Tokens scans src eagerly.
func (s *Scanner) Tokens(src string) ([]token.Token, error) {
	var tokens []token.Token
	for tok, err := range s.Scan(src) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
