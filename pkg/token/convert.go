package token

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/types"
)

// Converter decodes the raw lexeme of a literal into a value of the
// requested static type. It returns false when the lexeme is invalid.
type Converter interface {
	Convert(lexeme string, t types.Type) (any, bool)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(lexeme string, t types.Type) (any, bool)

// Convert calls f(lexeme, t).
func (f ConverterFunc) Convert(lexeme string, t types.Type) (any, bool) {
	return f(lexeme, t)
}

// DefaultConverter decodes quoted strings, decimal numbers and hash
// delimited timestamps as produced by the scanner.
var DefaultConverter Converter = defaultConverter{}

// TimestampLayouts lists the layouts tried, in order, for timestamp literals.
// Layouts without a zone parse as UTC.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

type defaultConverter struct{}

func (defaultConverter) Convert(lexeme string, t types.Type) (any, bool) {
	switch t {
	case types.Text:
		return Unquote(lexeme), true
	case types.Number:
		d, err := decimal.NewFromString(lexeme)
		if err != nil {
			return nil, false
		}
		return d, true
	case types.Timestamp:
		return ParseTimestamp(strings.Trim(lexeme, "#"))
	case types.Boolean:
		switch lexeme {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

// ParseTimestamp parses s with the first matching layout of TimestampLayouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Unquote strips the surrounding double quotes of a string lexeme, if any,
// and resolves the escapes \n, \" and \\. Any other escaped character is
// kept together with its backslash.
func Unquote(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[0] == '"' && lexeme[len(lexeme)-1] == '"' {
		lexeme = lexeme[1 : len(lexeme)-1]
	}
	if !strings.Contains(lexeme, `\`) {
		return lexeme
	}

	var b strings.Builder
	b.Grow(len(lexeme))
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c != '\\' || i+1 == len(lexeme) {
			b.WriteByte(c)
			continue
		}
		i++
		switch next := lexeme[i]; next {
		case 'n':
			b.WriteByte('\n')
		case '"', '\\':
			b.WriteByte(next)
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}
	return b.String()
}
