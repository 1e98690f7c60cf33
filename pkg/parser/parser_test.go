package parser_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/parser"
	"github.com/sandrolain/exprlite/pkg/scanner"
	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

type order struct {
	Price float64
	Qty   int
}

func names() naming.Map {
	return naming.Map{
		"price": naming.FromField("price", func(o order) float64 { return o.Price }),
		"qty":   naming.MustValue("qty", 2),
		"total": naming.FromExpression("total", "price * qty"),
		"label": naming.MustValue("label", "sku"),
	}
}

func parse(t *testing.T, src string, opts ...parser.Option) *parser.Result {
	t.Helper()
	res, err := parser.New(opts...).ParseString(src, "")
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", src, err)
	}
	return res
}

func expectError(t *testing.T, src string, code types.ErrorCode, pos int, opts ...parser.Option) *types.Error {
	t.Helper()
	_, err := parser.New(opts...).ParseString(src, "")
	if err == nil {
		t.Fatalf("Expected error parsing %q but got none", src)
	}
	var typed *types.Error
	if !errors.As(err, &typed) {
		t.Fatalf("Expected *types.Error parsing %q, got %T: %v", src, err, err)
	}
	if typed.Code != code {
		t.Fatalf("Expected code %d parsing %q, got %v", code, src, err)
	}
	if pos >= 0 && typed.Position != pos {
		t.Errorf("Expected position %d parsing %q, got %d", pos, src, typed.Position)
	}
	return typed
}

var noFold = []parser.Option{
	parser.WithConstantFolding(false),
	parser.WithIdentifierSubstitution(false),
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 / 4 % 3", "((8 / 4) % 3)"},
		{"1 + 2 > 2 && true", "(((1 + 2) > 2) && true)"},
		{"true || false && false", "(true || (false && false))"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"-1 * 2", "((-1) * 2)"},
		{"!!true", "(!(!true))"},
		{"--1", "(-(-1))"},
		{`"a" + "b" + "c"`, `(("a" + "b") + "c")`},
		{`"abc" !have "b"`, `("abc" !have "b")`},
		{"1 !in [2, 3]", "(1 !in [2, 3])"},
		{"if(1 > 2, 1, 2) + 1", "(if((1 > 2), 1, 2) + 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := parse(t, tt.input, noFold...)
			if got := res.String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRelationalChainNeedsBooleanOperands(t *testing.T) {
	expectError(t, "1 < 2 < 3", types.ErrExpected, 6, noFold...)
}

func TestAppendForTextOperands(t *testing.T) {
	res := parse(t, `"a" + "b"`, noFold...)
	bin, ok := res.Root.(*ast.Binary)
	if !ok {
		t.Fatalf("Expected binary root, got %T", res.Root)
	}
	if bin.Op != ast.Append {
		t.Errorf("Expected append, got %s", bin.Op.Label())
	}
	if res.Type() != types.Text {
		t.Errorf("Expected text, got %s", res.Type())
	}
}

func TestWhitespaceIsIgnored(t *testing.T) {
	a := parse(t, "1+2*(3-4)", noFold...)
	b := parse(t, " 1 +  2 *\n( 3 - 4 )\t", noFold...)
	if a.String() != b.String() {
		t.Errorf("Expected identical trees, got %s and %s", a, b)
	}
}

func TestFolding(t *testing.T) {
	tests := []struct {
		input string
		want  string
		typ   types.Type
	}{
		{`"3" have "1" && 2 in [1, 2, 3]`, "false", types.Boolean},
		{`if(1 > 2, "a", "b")`, `"b"`, types.Text},
		{"1 + 2 * 3", "7", types.Number},
		{"--1", "1", types.Number},
		{"+5", "5", types.Number},
		{"7 % 4", "3", types.Number},
		{"1 / 4", "0.25", types.Number},
		{`"a" + "b"`, `"ab"`, types.Text},
		{"4 !in [1, 2]", "true", types.Boolean},
		{"#2024-01-02# == #2024-01-02T00:00:00Z#", "true", types.Boolean},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := parse(t, tt.input)
			if _, ok := res.Root.(*ast.Constant); !ok {
				t.Fatalf("Expected constant root, got %s", res)
			}
			if got := res.String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if res.Type() != tt.typ {
				t.Errorf("Expected type %s, got %s", tt.typ, res.Type())
			}
		})
	}
}

func TestOptimizationLevels(t *testing.T) {
	res := parse(t, "1 + 2", parser.WithOptimizationLevels(0))
	if _, ok := res.Root.(*ast.Binary); !ok {
		t.Errorf("Expected no folding at level 0, got %s", res)
	}

	res = parse(t, "1 + 2", parser.WithOptimizationLevels(-4))
	if _, ok := res.Root.(*ast.Binary); !ok {
		t.Errorf("Expected negative levels to clamp to 0, got %s", res)
	}

	p := parser.New(parser.WithOptimizationLevels(99))
	if got := p.Options().Optimizer.Levels; got != 10 {
		t.Errorf("Expected levels clamped to 10, got %d", got)
	}
}

func TestExpressionExpansion(t *testing.T) {
	res := parse(t, "total + total", parser.WithProviders(names()))

	if got, want := res.String(), "((<id:2> * 2) + (<id:2> * 2))"; got != want {
		t.Errorf("Parse = %s, want %s", got, want)
	}
	if got := res.IDs(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Expected only price (id 2) to be referenced, got %v", got)
	}
	d, _ := res.Lookup(2)
	if d.Info.Name != "price" || d.Refs != 2 {
		t.Errorf("Expected price with 2 refs, got %s with %d", d.Info.Name, d.Refs)
	}
	if d.Info.Kind != naming.Member {
		t.Errorf("Expected member binding, got %s", d.Info.Kind)
	}
}

func TestExpansionWithoutSubstitution(t *testing.T) {
	res := parse(t, "total", parser.WithProviders(names()), parser.WithIdentifierSubstitution(false))

	if got, want := res.String(), "(<id:2> * <id:3>)"; got != want {
		t.Errorf("Parse = %s, want %s", got, want)
	}
	qty, ok := res.Lookup(3)
	if !ok || qty.Info.Name != "qty" || qty.Refs != 1 {
		t.Fatalf("Expected qty with one ref, got %+v", qty)
	}
	if _, ok := res.Lookup(1); ok {
		t.Errorf("Expression bindings must not be listed as used names")
	}
}

func TestIdentifierIDsFollowFirstUse(t *testing.T) {
	res := parse(t, `label + label == "x" && price > qty`,
		parser.WithProviders(names()), parser.WithIdentifierSubstitution(false))

	want := map[int]string{1: "label", 2: "price", 3: "qty"}
	for id, name := range want {
		d, ok := res.Lookup(id)
		if !ok || d.Info.Name != name {
			t.Errorf("Expected id %d to be %s, got %+v", id, name, d)
		}
	}
	if d, _ := res.Lookup(1); d.Refs != 2 {
		t.Errorf("Expected label to have 2 refs, got %d", d.Refs)
	}
}

func TestProvidersInOrder(t *testing.T) {
	first := naming.Map{"x": naming.MustValue("x", 1)}
	second := naming.Map{"x": naming.MustValue("x", 2), "y": naming.MustValue("y", 3)}

	res := parse(t, "x + y", parser.WithProviders(first, second))
	if got := res.String(); got != "4" {
		t.Errorf("Expected first provider to win, got %s", got)
	}
}

func TestSelfReference(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		_, err := parser.New().ParseString("a + 1", "a")
		if !errors.Is(err, types.ErrSelfReference) {
			t.Fatalf("Expected self reference, got %v", err)
		}
	})

	t.Run("indirect", func(t *testing.T) {
		cyclic := naming.Map{
			"a": naming.FromExpression("a", "b + 1"),
			"b": naming.FromExpression("b", "c * 2"),
			"c": naming.FromExpression("c", "a - 1"),
		}
		err := expectError(t, "a", types.ErrSelfReference, -1, parser.WithProviders(cyclic))
		if err.Token != "a" {
			t.Errorf("Expected token a, got %s", err.Token)
		}
	})

	t.Run("through self name", func(t *testing.T) {
		defs := naming.Map{"b": naming.FromExpression("b", "a * 2")}
		_, err := parser.New(parser.WithProviders(defs)).ParseString("b", "a")
		if !errors.Is(err, types.ErrSelfReference) {
			t.Fatalf("Expected self reference, got %v", err)
		}
	})

	t.Run("shared definition is not a cycle", func(t *testing.T) {
		defs := naming.Map{
			"a": naming.FromExpression("a", "b + b"),
			"b": naming.FromExpression("b", "1"),
		}
		res := parse(t, "a * a", parser.WithProviders(defs))
		if got := res.String(); got != "4" {
			t.Errorf("Expected 4, got %s", got)
		}
	})
}

func TestIdentifierErrors(t *testing.T) {
	err := expectError(t, "1 + x", types.ErrUnknownIdentifier, 4)
	if !strings.Contains(err.Message, "'x'") {
		t.Errorf("Expected message to name x, got %s", err.Message)
	}

	missing := naming.Map{"m": {Kind: naming.Plain}}
	expectError(t, "m", types.ErrMissingBinding, 0, parser.WithProviders(missing))

	malformed := naming.Map{"m": {Kind: naming.Plain, Type: types.Text, Value: 1}}
	expectError(t, "m", types.ErrMalformedNameInfo, 0, parser.WithProviders(malformed))

	broken := naming.Map{"e": naming.FromExpression("e", `"open`)}
	expectError(t, "e", types.ErrUnterminatedString, -1, parser.WithProviders(broken))
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		code  types.ErrorCode
		pos   int
	}{
		{"", types.ErrUnexpectedEnd, 0},
		{"1 +", types.ErrUnexpectedEnd, 3},
		{"1 2", types.ErrExtraTokens, 2},
		{"(1", types.ErrExpected, 2},
		{"1 ! 2", types.ErrExpected, 4},
		{"1 !", types.ErrUnexpectedEnd, 3},
		{"1 in []", types.ErrEmptyArray, 5},
		{"1 in [1, \"a\"]", types.ErrExpected, 5},
		{"1 in 2", types.ErrExpected, 5},
		{"1 + true", types.ErrExpected, 2},
		{`-"a"`, types.ErrExpected, 0},
		{"if(1, 2, 3)", types.ErrExpected, 0},
		{`if(true, 1, "a")`, types.ErrIfBranchTypes, 0},
		{"if(true 1, 2)", types.ErrExpected, 8},
		{")", types.ErrExpected, 0},
		{"[1] == 1", types.ErrExpected, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectError(t, tt.input, tt.code, tt.pos)
		})
	}
}

func TestExpectedMessages(t *testing.T) {
	err := expectError(t, "(1", types.ErrExpected, -1)
	if err.Message != "expected ')', found '<end of tokens>'" {
		t.Errorf("Unexpected message %q", err.Message)
	}

	err = expectError(t, "1 ! 2", types.ErrExpected, -1)
	if err.Message != "expected 'in or have', found '2'" {
		t.Errorf("Unexpected message %q", err.Message)
	}
}

func TestConverterMustKeepLiteralType(t *testing.T) {
	conv := token.ConverterFunc(func(lexeme string, typ types.Type) (any, bool) {
		if typ == types.Number {
			return lexeme, true
		}
		return token.DefaultConverter.Convert(lexeme, typ)
	})
	sc := scanner.New(scanner.WithConverter(conv))

	err := expectError(t, `"a" + 12`, types.ErrExpected, 6, parser.WithScanner(sc))
	if err.Token != "12" {
		t.Errorf("Expected token 12, got %q", err.Token)
	}

	// Converters may change the value as long as the type holds.
	widened := token.ConverterFunc(func(lexeme string, typ types.Type) (any, bool) {
		if typ == types.Number {
			return 42, true
		}
		return token.DefaultConverter.Convert(lexeme, typ)
	})
	sc = scanner.New(scanner.WithConverter(widened))
	res := parse(t, "1 + 1", parser.WithScanner(sc))
	if got := res.String(); got != "84" {
		t.Errorf("Expected 84, got %s", got)
	}
}

func TestDivideByZero(t *testing.T) {
	expectError(t, "1 / 0", types.ErrDivideByZero, 2)
	expectError(t, "1 % 0.0", types.ErrDivideByZero, 2)

	// The divisor only becomes zero once folded.
	expectError(t, "price / (qty - 2)", types.ErrDivideByZero, -1, parser.WithProviders(names()))

	// Without folding the divisor stays an expression.
	parse(t, "price / (qty - 2)", parser.WithProviders(names()), parser.WithConstantFolding(false))
}

func TestParseTokens(t *testing.T) {
	sc := scanner.New()
	tokens, err := sc.Tokens("qty * 3")
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}

	res, err := parser.New(parser.WithProviders(names())).Parse(tokens, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := res.String(); got != "6" {
		t.Errorf("Expected 6, got %s", got)
	}
}

func TestParserIsReusable(t *testing.T) {
	p := parser.New(parser.WithProviders(names()), parser.WithIdentifierSubstitution(false))
	for range 3 {
		res, err := p.ParseString("qty + qty", "")
		if err != nil {
			t.Fatalf("ParseString: %v", err)
		}
		if d, _ := res.Lookup(1); d.Refs != 2 {
			t.Fatalf("Expected fresh reference counts, got %d", d.Refs)
		}
	}
}

func TestDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	parse(t, "total", parser.WithProviders(names()), parser.WithLogger(logger))

	out := buf.String()
	if !strings.Contains(out, "expression parsed") || !strings.Contains(out, "identifier expanded") {
		t.Errorf("Expected debug records, got %s", out)
	}
}
