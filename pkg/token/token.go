// Package token defines the lexical tokens produced by the scanner, the table
// of known keywords and symbols and the lexeme conversion contract used to
// decode literals.
package token

import (
	"fmt"

	"github.com/sandrolain/exprlite/pkg/types"
)

// Group classifies a token.
type Group uint8

const (
	Whitespace Group = iota + 1
	Identifier
	Keyword
	Literal
	Symbol
)

// String returns a string representation of the group.
func (g Group) String() string {
	switch g {
	case Whitespace:
		return "whitespace"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Literal:
		return "literal"
	case Symbol:
		return "symbol"
	default:
		return "(unknown)"
	}
}

// Token is a lexical token. Known tokens (keywords, symbols and literal
// markers) carry a non-zero ID and are compared with Is by (Group, ID).
type Token struct {
	Group  Group
	ID     uint8
	Lexeme string     // source text consumed by the token
	Value  any        // decoded value, literals only
	Type   types.Type // static type of Value, literals only
	Pos    int        // byte offset in the source
	Width  int        // run length, whitespace only
}

// Is reports whether t has the identity of the known token k.
func (t Token) Is(k Token) bool {
	return k.ID != 0 && t.Group == k.Group && t.ID == k.ID
}

// End returns the offset just past the token.
func (t Token) End() int {
	if t.Group == Whitespace {
		return t.Pos + t.Width
	}
	return t.Pos + len(t.Lexeme)
}

func (t Token) String() string {
	if t.Group == Whitespace {
		return fmt.Sprintf("whitespace(%d)@%d", t.Width, t.Pos)
	}
	return fmt.Sprintf("%s(%s)@%d", t.Group, t.Lexeme, t.Pos)
}

// Keywords.
var (
	True  = Token{Group: Keyword, ID: 1, Lexeme: "true"}
	False = Token{Group: Keyword, ID: 2, Lexeme: "false"}
	In    = Token{Group: Keyword, ID: 3, Lexeme: "in"}
	Have  = Token{Group: Keyword, ID: 4, Lexeme: "have"}
	If    = Token{Group: Keyword, ID: 5, Lexeme: "if"}
)

// Literal markers. A scanned literal shares the ID of its marker.
var (
	StringLiteral    = Token{Group: Literal, ID: 1, Lexeme: "<string>", Type: types.Text}
	NumberLiteral    = Token{Group: Literal, ID: 2, Lexeme: "<number>", Type: types.Number}
	TimestampLiteral = Token{Group: Literal, ID: 3, Lexeme: "<date-time>", Type: types.Timestamp}
)

// Symbols.
var (
	Plus         = Token{Group: Symbol, ID: 1, Lexeme: "+"}
	Minus        = Token{Group: Symbol, ID: 2, Lexeme: "-"}
	Multiply     = Token{Group: Symbol, ID: 3, Lexeme: "*"}
	Divide       = Token{Group: Symbol, ID: 4, Lexeme: "/"}
	Remainder    = Token{Group: Symbol, ID: 5, Lexeme: "%"}
	Equal        = Token{Group: Symbol, ID: 6, Lexeme: "=="}
	NotEqual     = Token{Group: Symbol, ID: 7, Lexeme: "!="}
	Greater      = Token{Group: Symbol, ID: 8, Lexeme: ">"}
	GreaterEqual = Token{Group: Symbol, ID: 9, Lexeme: ">="}
	Less         = Token{Group: Symbol, ID: 10, Lexeme: "<"}
	LessEqual    = Token{Group: Symbol, ID: 11, Lexeme: "<="}
	OpenParen    = Token{Group: Symbol, ID: 12, Lexeme: "("}
	CloseParen   = Token{Group: Symbol, ID: 13, Lexeme: ")"}
	OpenBracket  = Token{Group: Symbol, ID: 14, Lexeme: "["}
	CloseBracket = Token{Group: Symbol, ID: 15, Lexeme: "]"}
	Comma        = Token{Group: Symbol, ID: 16, Lexeme: ","}
	And          = Token{Group: Symbol, ID: 17, Lexeme: "&&"}
	Or           = Token{Group: Symbol, ID: 18, Lexeme: "||"}
	Not          = Token{Group: Symbol, ID: 19, Lexeme: "!"}
)

// symbols1 maps single-character symbols to their known token.
var symbols1 = [...]*Token{
	'+': &Plus,
	'-': &Minus,
	'*': &Multiply,
	'/': &Divide,
	'%': &Remainder,
	'>': &Greater,
	'<': &Less,
	'(': &OpenParen,
	')': &CloseParen,
	'[': &OpenBracket,
	']': &CloseBracket,
	',': &Comma,
	'!': &Not,
}

// symbols2 maps two-character symbols to their known token.
var symbols2 = map[string]*Token{
	"==": &Equal,
	"!=": &NotEqual,
	">=": &GreaterEqual,
	"<=": &LessEqual,
	"&&": &And,
	"||": &Or,
}

// LookupSymbol returns the known symbol at the start of s, preferring the
// two-character form.
func LookupSymbol(s string) (Token, bool) {
	if len(s) >= 2 {
		if k, ok := symbols2[s[:2]]; ok {
			return *k, true
		}
	}
	if len(s) >= 1 && int(s[0]) < len(symbols1) {
		if k := symbols1[s[0]]; k != nil {
			return *k, true
		}
	}
	return Token{}, false
}

// LookupKeyword returns the keyword spelled by word.
func LookupKeyword(word string) (Token, bool) {
	switch word {
	case "true":
		return True, true
	case "false":
		return False, true
	case "in":
		return In, true
	case "have":
		return Have, true
	case "if":
		return If, true
	default:
		return Token{}, false
	}
}

// LiteralOf returns the literal marker for static type t.
func LiteralOf(t types.Type) (Token, bool) {
	switch t {
	case types.Text:
		return StringLiteral, true
	case types.Number:
		return NumberLiteral, true
	case types.Timestamp:
		return TimestampLiteral, true
	default:
		return Token{}, false
	}
}
