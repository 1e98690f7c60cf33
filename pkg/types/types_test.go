package types_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/types"
)

func TestTypeLabels(t *testing.T) {
	tests := []struct {
		typ   types.Type
		name  string
		label string
	}{
		{types.Text, "text", "<string>"},
		{types.Number, "number", "<numeric>"},
		{types.Boolean, "boolean", "<boolean>"},
		{types.Timestamp, "timestamp", "<date-time>"},
		{types.Invalid, "invalid", "<invalid>"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.typ.Label(); got != tt.label {
			t.Errorf("Label() = %q, want %q", got, tt.label)
		}
	}
}

func TestTypeOfRoundTrip(t *testing.T) {
	for _, typ := range []types.Type{types.Text, types.Number, types.Boolean, types.Timestamp} {
		got, ok := types.TypeOf(typ.GoType())
		if !ok || got != typ {
			t.Fatalf("TypeOf(%v) = %v, %v", typ.GoType(), got, ok)
		}
	}
	if _, ok := types.TypeOf(reflect.TypeFor[int]()); ok {
		t.Fatal("expected int to have no static type")
	}
}

func TestCanonicalWidensNumerics(t *testing.T) {
	inputs := []any{int(7), int8(7), int16(7), int32(7), int64(7), uint(7), uint8(7), uint16(7), uint32(7), uint64(7), float32(7), float64(7)}
	want := decimal.NewFromInt(7)
	for _, in := range inputs {
		v, typ, err := types.Canonical(in)
		if err != nil {
			t.Fatalf("Canonical(%T): %v", in, err)
		}
		if typ != types.Number {
			t.Fatalf("Canonical(%T) type = %v", in, typ)
		}
		if d := v.(decimal.Decimal); !d.Equal(want) {
			t.Fatalf("Canonical(%T) = %s", in, d)
		}
	}
}

func TestCanonicalRejectsUnsupported(t *testing.T) {
	if _, _, err := types.Canonical([]int{1}); err == nil {
		t.Fatal("expected error for slice value")
	}
	var nilDec *decimal.Decimal
	if _, _, err := types.Canonical(nilDec); err == nil {
		t.Fatal("expected error for nil decimal pointer")
	}
}

func TestEqual(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		a, b any
		want bool
	}{
		{"a", "a", true},
		{"a", "b", false},
		{decimal.RequireFromString("1.50"), decimal.RequireFromString("1.5"), true},
		{true, true, true},
		{ts, ts.In(time.FixedZone("x", 3600)), true},
		{"1", decimal.NewFromInt(1), false},
	}
	for i, tt := range tests {
		if got := types.Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("case %d: Equal(%v, %v) = %v", i, tt.a, tt.b, got)
		}
	}
}

func TestDiv(t *testing.T) {
	got := types.Div(decimal.NewFromInt(1), decimal.NewFromInt(3))
	if !strings.HasPrefix(got.String(), "0.3333333333") {
		t.Fatalf("unexpected quotient %s", got)
	}
	if got := types.Mod(decimal.NewFromInt(-7), decimal.NewFromInt(3)); !got.Equal(decimal.NewFromInt(-1)) {
		t.Fatalf("Mod(-7, 3) = %s", got)
	}
}

func TestErrorFormatting(t *testing.T) {
	err := types.NewError(types.ErrUnknownToken, "unknown token found at index 3", 3)
	want := "scanner error 1001 at position 3: unknown token found at index 3"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
	noPos := types.NewError(types.ErrOutputType, "bad output", -1)
	if noPos.Error() != "generator error 3001: bad output" {
		t.Fatalf("unexpected %q", noPos.Error())
	}
}

func TestErrorIsCode(t *testing.T) {
	var err error = fmt.Errorf("compile: %w", types.NewError(types.ErrDivideByZero, "x", 0))
	if !errors.Is(err, types.ErrDivideByZero) {
		t.Fatal("expected errors.Is to match the code")
	}
	if errors.Is(err, types.ErrEmptyArray) {
		t.Fatal("unexpected match on a different code")
	}
	var typed *types.Error
	if !errors.As(err, &typed) || typed.Source() != types.SourceParser {
		t.Fatalf("expected a parser error, got %v", typed)
	}
}

func TestErrorCause(t *testing.T) {
	cause := errors.New("boom")
	err := types.NewError(types.ErrMalformedNameInfo, "bad", -1).WithCause(cause).WithToken("x")
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	if err.Token != "x" {
		t.Fatalf("token = %q", err.Token)
	}
}

func TestExpected(t *testing.T) {
	err := types.Expected("<array>", "<numeric-literal>", 4)
	if err.Code != types.ErrExpected || !strings.Contains(err.Message, "expected '<array>', found '<numeric-literal>'") {
		t.Fatalf("unexpected error %v", err)
	}
}
