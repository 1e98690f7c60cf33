package ast

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/types"
)

// Describe returns the diagnostic label of n, as used in expected-vs-found
// errors.
func Describe(n Node) string {
	switch n := n.(type) {
	case *Constant:
		switch n.typ {
		case types.Text:
			return "<string-literal>"
		case types.Number:
			return "<numeric-literal>"
		case types.Boolean:
			return "<boolean-literal>"
		case types.Timestamp:
			return "<datetime-literal>"
		}
		return "<literal>"
	case *Identifier:
		return "<identifier>"
	case *Unary:
		return n.Op.Label()
	case *Binary:
		return n.Op.Label()
	case *Array:
		return "<array>"
	case *If:
		return "<if-expression>"
	default:
		return "<unknown-expression>"
	}
}

// String renders n as source-like text. Unary and binary expressions are
// parenthesised and identifiers print as <id:N>.
func String(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Constant:
		b.WriteString(FormatValue(n.Value))
	case *Identifier:
		b.WriteString("<id:")
		b.WriteString(strconv.Itoa(n.ID))
		b.WriteByte('>')
	case *Unary:
		b.WriteByte('(')
		b.WriteString(n.Op.String())
		write(b, n.Operand)
		b.WriteByte(')')
	case *Binary:
		b.WriteByte('(')
		write(b, n.Left)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		write(b, n.Right)
		b.WriteByte(')')
	case *Array:
		b.WriteByte('[')
		for i, e := range n.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, e)
		}
		b.WriteByte(']')
	case *If:
		b.WriteString("if(")
		write(b, n.Cond)
		b.WriteString(", ")
		write(b, n.Then)
		b.WriteString(", ")
		write(b, n.Else)
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString("<unknown>")
	}
}

// FormatValue renders a canonical value as a literal of the language.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return quote(x)
	case decimal.Decimal:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return "#" + x.Format(time.RFC3339Nano) + "#"
	default:
		return "<invalid>"
	}
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
