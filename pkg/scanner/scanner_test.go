package scanner_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/scanner"
	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

func scanAll(t *testing.T, src string, opts ...scanner.Option) []token.Token {
	t.Helper()
	toks, err := scanner.New(opts...).Tokens(src)
	if err != nil {
		t.Fatalf("Tokens(%q): %v", src, err)
	}
	return toks
}

func expectError(t *testing.T, src string, code types.ErrorCode, pos int) {
	t.Helper()
	_, err := scanner.New().Tokens(src)
	if err == nil {
		t.Fatalf("Tokens(%q): expected error %d", src, code)
	}
	var typed *types.Error
	if !errors.As(err, &typed) {
		t.Fatalf("Tokens(%q): expected *types.Error, got %T", src, err)
	}
	if typed.Code != code {
		t.Fatalf("Tokens(%q): expected code %d, got %d (%v)", src, code, typed.Code, err)
	}
	if typed.Source() != types.SourceScanner {
		t.Fatalf("Tokens(%q): expected scanner source, got %s", src, typed.Source())
	}
	if typed.Position != pos {
		t.Fatalf("Tokens(%q): expected position %d, got %d", src, pos, typed.Position)
	}
}

func TestEmptyInputProducesNothing(t *testing.T) {
	for _, src := range []string{"", "   ", "\t\n "} {
		if toks := scanAll(t, src); len(toks) != 0 {
			t.Fatalf("Tokens(%q): expected no tokens, got %v", src, toks)
		}
	}
}

func TestWhitespaceRuns(t *testing.T) {
	toks := scanAll(t, "1  +\t2")
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens, got %d: %v", len(toks), toks)
	}
	if toks[1].Group != token.Whitespace || toks[1].Width != 2 {
		t.Fatalf("expected whitespace run of 2, got %v", toks[1])
	}
	if toks[3].Group != token.Whitespace || toks[3].Width != 1 {
		t.Fatalf("expected whitespace run of 1, got %v", toks[3])
	}

	toks = scanAll(t, "1  +\t2", scanner.WithIgnoreWhitespace(true))
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens without whitespace, got %v", toks)
	}
}

func TestSymbols(t *testing.T) {
	toks := scanAll(t, "+-*/%==!=>>=<<=()[],&&||!", scanner.WithIgnoreWhitespace(true))
	want := []token.Token{
		token.Plus, token.Minus, token.Multiply, token.Divide, token.Remainder,
		token.Equal, token.NotEqual, token.Greater, token.GreaterEqual, token.Less,
		token.LessEqual, token.OpenParen, token.CloseParen, token.OpenBracket,
		token.CloseBracket, token.Comma, token.And, token.Or, token.Not,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i := range want {
		if !toks[i].Is(want[i]) {
			t.Errorf("token %d: expected %s, got %v", i, want[i].Lexeme, toks[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "true false in have if inside $x @y _z a1", scanner.WithIgnoreWhitespace(true))
	keywords := []token.Token{token.True, token.False, token.In, token.Have, token.If}
	for i, k := range keywords {
		if !toks[i].Is(k) {
			t.Errorf("token %d: expected keyword %s, got %v", i, k.Lexeme, toks[i])
		}
	}
	for i, name := range []string{"inside", "$x", "@y", "_z", "a1"} {
		tok := toks[len(keywords)+i]
		if tok.Group != token.Identifier || tok.Lexeme != name {
			t.Errorf("expected identifier %q, got %v", name, tok)
		}
	}
}

func TestLiterals(t *testing.T) {
	toks := scanAll(t, `"a\"b" 1.5e+2 #2024-01-02# .25`, scanner.WithIgnoreWhitespace(true))
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %v", toks)
	}
	if !toks[0].Is(token.StringLiteral) || toks[0].Value != `a"b` || toks[0].Type != types.Text {
		t.Errorf("unexpected string token %+v", toks[0])
	}
	if !toks[1].Is(token.NumberLiteral) || !toks[1].Value.(decimal.Decimal).Equal(decimal.NewFromInt(150)) {
		t.Errorf("unexpected number token %+v", toks[1])
	}
	if !toks[2].Is(token.TimestampLiteral) || !toks[2].Value.(time.Time).Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp token %+v", toks[2])
	}
	if toks[3].Type != types.Number || !toks[3].Value.(decimal.Decimal).Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("unexpected number token %+v", toks[3])
	}
}

func TestEscapedBackslashClosesString(t *testing.T) {
	toks := scanAll(t, `"a\\" + "b"`, scanner.WithIgnoreWhitespace(true))
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %v", toks)
	}
	if toks[0].Value != `a\` {
		t.Fatalf("unexpected value %q", toks[0].Value)
	}
}

func TestPositions(t *testing.T) {
	toks := scanAll(t, "ab >= 10")
	wantPos := []int{0, 2, 3, 5, 6}
	for i, p := range wantPos {
		if toks[i].Pos != p {
			t.Errorf("token %d: expected position %d, got %d", i, p, toks[i].Pos)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
		pos  int
	}{
		{"unknown char", "1 + ?", types.ErrUnknownToken, 4},
		{"lone equals", "a = b", types.ErrUnknownToken, 2},
		{"unterminated string", `"abc`, types.ErrUnterminatedString, 0},
		{"unterminated escaped quote", `x + "abc\"`, types.ErrUnterminatedString, 4},
		{"unterminated timestamp", "#2024-01-01", types.ErrUnterminatedTimestamp, 0},
		{"invalid timestamp", "1 + #notadate#", types.ErrInvalidTimestamp, 4},
		{"trailing dot", "5.", types.ErrInvalidNumber, 0},
		{"exponent without sign", "1e5", types.ErrInvalidNumber, 0},
		{"exponent without digits", "2 * 1e+", types.ErrInvalidNumber, 4},
		{"lone dot", ".", types.ErrInvalidNumber, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.src, tt.code, tt.pos)
		})
	}
}

func TestIdentifierLength(t *testing.T) {
	sc := scanner.New(scanner.WithMaxIdentifierLength(4))
	if _, err := sc.Tokens("abcd"); err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}
	_, err := sc.Tokens("abcde")
	if !errors.Is(err, types.ErrIdentifierTooLong) {
		t.Fatalf("expected identifier-too-long, got %v", err)
	}
	if _, err := scanner.New(scanner.WithMaxIdentifierLength(2)).Tokens("true"); err != nil {
		t.Fatalf("keywords are exempt from the limit: %v", err)
	}
	if got := scanner.New().Options().MaxIdentifierLength; got != scanner.DefaultMaxIdentifierLength {
		t.Fatalf("expected default limit, got %d", got)
	}
	long := strings.Repeat("x", scanner.DefaultMaxIdentifierLength+1)
	if _, err := scanner.New().Tokens(long); !errors.Is(err, types.ErrIdentifierTooLong) {
		t.Fatalf("expected identifier-too-long, got %v", err)
	}
}

func TestScanIsLazyAndRestartable(t *testing.T) {
	sc := scanner.New(scanner.WithIgnoreWhitespace(true))
	seq := sc.Scan("1 + 2 ?")

	var first []token.Token
	for tok, err := range seq {
		if err != nil {
			t.Fatalf("unexpected early error: %v", err)
		}
		first = append(first, tok)
		if len(first) == 2 {
			break
		}
	}
	if len(first) != 2 {
		t.Fatalf("expected to stop after 2 tokens, got %d", len(first))
	}

	var count int
	var lastErr error
	for _, err := range seq {
		if err != nil {
			lastErr = err
			break
		}
		count++
	}
	if count != 3 || !errors.Is(lastErr, types.ErrUnknownToken) {
		t.Fatalf("expected 3 tokens then an error on re-invocation, got %d, %v", count, lastErr)
	}
}

func TestCustomConverter(t *testing.T) {
	conv := token.ConverterFunc(func(lexeme string, typ types.Type) (any, bool) {
		if typ == types.Number {
			return decimal.NewFromInt(42), true
		}
		return token.DefaultConverter.Convert(lexeme, typ)
	})
	toks := scanAll(t, "7", scanner.WithConverter(conv))
	if !toks[0].Value.(decimal.Decimal).Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected converter value, got %v", toks[0].Value)
	}
}
