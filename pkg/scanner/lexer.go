package scanner

import (
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

const eof = -1

// lexer holds the cursor of a single scan.
type lexer struct {
	input   string
	length  int
	start   int // start of the current token
	current int // current position
	width   int // width of the last rune read
	opts    *Options
}

func newLexer(input string, opts *Options) *lexer {
	return &lexer{
		input:  input,
		length: len(input),
		opts:   opts,
	}
}

// next returns the next token, false at end of input, or the first error.
func (l *lexer) next() (token.Token, bool, error) {
	l.start = l.current
	if l.current >= l.length {
		return token.Token{}, false, nil
	}

	if l.acceptAll(unicode.IsSpace) {
		return token.Token{
			Group: token.Whitespace,
			Pos:   l.start,
			Width: l.current - l.start,
		}, true, nil
	}

	if known, ok := token.LookupSymbol(l.input[l.current:]); ok {
		l.current += len(known.Lexeme)
		return l.newToken(known), true, nil
	}

	ch := l.nextRune()
	switch {
	case ch == '"':
		return l.scanString()
	case ch == '#':
		return l.scanTimestamp()
	case ch == '.' || isDigit(ch):
		l.backup()
		return l.scanNumber()
	case isIdentStart(ch):
		l.backup()
		return l.scanIdentifier()
	}

	return token.Token{}, false, types.Errorf(types.ErrUnknownToken, l.start,
		"unknown token found at index %d", l.start).WithToken(string(ch))
}

// scanString reads a string literal. The opening quote has been consumed.
// A quote preceded by an unescaped backslash does not close the literal.
func (l *lexer) scanString() (token.Token, bool, error) {
Loop:
	for {
		switch l.nextRune() {
		case '"':
			break Loop
		case '\\':
			if l.nextRune() != eof {
				break
			}
			fallthrough
		case eof:
			return token.Token{}, false, types.NewError(types.ErrUnterminatedString,
				"unterminated string literal detected", l.start).WithToken(l.lexeme())
		}
	}

	lexeme := l.lexeme()
	v, ok := l.opts.Converter.Convert(lexeme, types.Text)
	if !ok {
		return token.Token{}, false, types.Errorf(types.ErrUnknownToken, l.start,
			"invalid string literal at index %d", l.start).WithToken(lexeme)
	}
	return l.literal(token.StringLiteral, v), true, nil
}

// scanTimestamp reads a #...# literal. The opening hash has been consumed.
func (l *lexer) scanTimestamp() (token.Token, bool, error) {
	for {
		ch := l.nextRune()
		if ch == '#' {
			break
		}
		if ch == eof {
			return token.Token{}, false, types.NewError(types.ErrUnterminatedTimestamp,
				"unterminated date time literal detected", l.start).WithToken(l.lexeme())
		}
	}

	lexeme := l.lexeme()
	v, ok := l.opts.Converter.Convert(lexeme, types.Timestamp)
	if !ok {
		return token.Token{}, false, types.Errorf(types.ErrInvalidTimestamp, l.start,
			"invalid date time literal at index %d", l.start).WithToken(lexeme)
	}
	return l.literal(token.TimestampLiteral, v), true, nil
}

// scanNumber reads a number literal.
// Format: [0-9]*(\.[0-9]+)?([eE][+-][0-9]+)? with at least one digit.
func (l *lexer) scanNumber() (token.Token, bool, error) {
	valid := l.acceptAll(isDigit)

	if l.acceptRune('.') {
		valid = l.acceptAll(isDigit)
	}

	if valid && l.acceptRunes2('e', 'E') {
		valid = l.acceptRunes2('+', '-') && l.acceptAll(isDigit)
	}

	lexeme := l.lexeme()
	if !valid {
		return token.Token{}, false, l.invalidNumber(lexeme)
	}
	v, ok := l.opts.Converter.Convert(lexeme, types.Number)
	if !ok {
		return token.Token{}, false, l.invalidNumber(lexeme)
	}
	return l.literal(token.NumberLiteral, v), true, nil
}

func (l *lexer) invalidNumber(lexeme string) error {
	return types.Errorf(types.ErrInvalidNumber, l.start,
		"invalid numeric literal at index %d", l.start).WithToken(lexeme)
}

// scanIdentifier reads an identifier or a keyword.
func (l *lexer) scanIdentifier() (token.Token, bool, error) {
	l.nextRune()
	l.acceptAll(isIdentPart)

	word := l.lexeme()
	if known, ok := token.LookupKeyword(word); ok {
		return l.newToken(known), true, nil
	}

	if n := utf8.RuneCountInString(word); n > l.opts.MaxIdentifierLength {
		return token.Token{}, false, types.Errorf(types.ErrIdentifierTooLong, l.start,
			"the identifier '%s' has a long name, max allowed size is %d character(s)",
			word, l.opts.MaxIdentifierLength).WithToken(word)
	}

	return token.Token{
		Group:  token.Identifier,
		Lexeme: word,
		Pos:    l.start,
	}, true, nil
}

// Helper methods

func (l *lexer) lexeme() string {
	return l.input[l.start:l.current]
}

// newToken copies the identity of a known token at the current span.
func (l *lexer) newToken(known token.Token) token.Token {
	known.Lexeme = l.lexeme()
	known.Pos = l.start
	return known
}

func (l *lexer) literal(marker token.Token, v any) token.Token {
	t := l.newToken(marker)
	t.Value = v
	return t
}

func (l *lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *lexer) backup() {
	l.current -= l.width
}

func (l *lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// Character classification functions

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || r == '@' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
