// Package naming describes what identifiers mean. The embedder supplies
// Providers that resolve a name to an Info; the parser consults them once
// per distinct identifier and records the outcome in a Details entry.
//
// An Info binds a name to one of four kinds of payload:
//
//	Plain       a constant value, substituted at compile time
//	Expression  source text, expanded inline by the parser
//	Member      a getter on the input value (or a static getter)
//	Compiled    a one-parameter function, called with the input value
package naming

import (
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/exprlite/pkg/types"
)

// Kind is the binding kind of a name.
type Kind uint8

const (
	Plain Kind = iota + 1
	Expression
	Member
	Compiled
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Expression:
		return "expression"
	case Member:
		return "member"
	case Compiled:
		return "compiled"
	default:
		return "unknown"
	}
}

// Info is the meaning of a name.
type Info struct {
	Name string
	Type types.Type
	Kind Kind

	Value  any        // Plain
	Source string     // Expression
	Member *MemberRef // Member
	Func   *Func      // Compiled
}

// MemberRef describes a field or property of the input value.
type MemberRef struct {
	Name string
	// Static members ignore the input value; Get receives nil.
	Static bool
	// Owner is the declaring type. It must equal the input type of the
	// compiled callable unless Static is set.
	Owner reflect.Type
	// Get returns the member value. Non-canonical numeric kinds are
	// widened by Normalize.
	Get func(in any) any

	canonical bool
}

// Func is a precompiled sub-expression.
type Func struct {
	Params []reflect.Type
	// Call returns the result. Non-canonical numeric kinds are widened by
	// Normalize.
	Call func(in any) any

	canonical bool
}

// Primitive lists the Go types accepted by the typed constructors.
// Numeric types are widened to decimal.Decimal.
type Primitive interface {
	string | bool | time.Time | decimal.Decimal |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// FromValue binds name to a plain value.
func FromValue(name string, v any) (Info, error) {
	c, t, err := types.Canonical(v)
	if err != nil {
		return Info{}, types.Errorf(types.ErrMalformedNameInfo, -1, "name '%s': %v", name, err).WithToken(name).WithCause(err)
	}
	return Info{Name: name, Type: t, Kind: Plain, Value: c}, nil
}

// MustValue is like FromValue but panics on unsupported values.
func MustValue(name string, v any) Info {
	info, err := FromValue(name, v)
	if err != nil {
		panic(err)
	}
	return info
}

// FromExpression binds name to source text. The static type is that of the
// parsed expression.
func FromExpression(name, src string) Info {
	return Info{Name: name, Kind: Expression, Source: src}
}

// FromField binds name to a getter on input values of type T.
func FromField[T any, V Primitive](name string, get func(T) V) Info {
	return Info{
		Name: name,
		Type: staticType[V](),
		Kind: Member,
		Member: &MemberRef{
			Name:  name,
			Owner: reflect.TypeFor[T](),
			Get: func(in any) any {
				return types.MustCanonical(get(in.(T)))
			},
			canonical: true,
		},
	}
}

// FromStatic binds name to a getter that does not need the input value.
func FromStatic[V Primitive](name string, get func() V) Info {
	return Info{
		Name: name,
		Type: staticType[V](),
		Kind: Member,
		Member: &MemberRef{
			Name:   name,
			Static: true,
			Get: func(any) any {
				return types.MustCanonical(get())
			},
			canonical: true,
		},
	}
}

// FromFunc binds name to a compiled sub-expression taking the input value.
func FromFunc[In any, V Primitive](name string, fn func(In) V) Info {
	return Info{
		Name: name,
		Type: staticType[V](),
		Kind: Compiled,
		Func: &Func{
			Params: []reflect.Type{reflect.TypeFor[In]()},
			Call: func(in any) any {
				return types.MustCanonical(fn(in.(In)))
			},
			canonical: true,
		},
	}
}

func staticType[V Primitive]() types.Type {
	var zero V
	_, t, _ := types.Canonical(zero)
	return t
}

// Normalize validates info and returns a copy whose plain value, member
// getter and compiled function yield canonical representations. Structural
// problems are reported as ErrMalformedNameInfo and absent payloads as
// ErrMissingBinding.
func (i Info) Normalize() (Info, error) {
	switch i.Kind {
	case Plain:
		if i.Value == nil {
			return i, i.missing()
		}
		c, t, err := types.Canonical(i.Value)
		if err != nil {
			return i, i.malformed("%v", err).WithCause(err)
		}
		if i.Type != types.Invalid && i.Type != t {
			return i, i.malformed("declared type %s does not match value type %s", i.Type, t)
		}
		i.Value, i.Type = c, t
	case Expression:
		if strings.TrimSpace(i.Source) == "" {
			return i, i.missing()
		}
	case Member:
		if i.Member == nil || i.Member.Get == nil {
			return i, i.missing()
		}
		if !i.Type.Valid() {
			return i, i.malformed("member has no static type")
		}
		if !i.Member.Static && i.Member.Owner == nil {
			return i, i.malformed("instance member has no declaring type")
		}
		if !i.Member.canonical {
			m := *i.Member
			m.Get, m.canonical = widen(m.Get), true
			i.Member = &m
		}
	case Compiled:
		if i.Func == nil || i.Func.Call == nil {
			return i, i.missing()
		}
		if !i.Type.Valid() {
			return i, i.malformed("compiled expression has no static type")
		}
		if !i.Func.canonical {
			f := *i.Func
			f.Call, f.canonical = widen(f.Call), true
			i.Func = &f
		}
	default:
		return i, i.malformed("unknown binding kind %d", i.Kind)
	}
	return i, nil
}

func widen(f func(any) any) func(any) any {
	return func(in any) any {
		return types.MustCanonical(f(in))
	}
}

func (i Info) missing() *types.Error {
	return types.Errorf(types.ErrMissingBinding, -1, "the identifier '%s' has no %s binding", i.Name, i.Kind).WithToken(i.Name)
}

func (i Info) malformed(format string, args ...any) *types.Error {
	args = append([]any{i.Name}, args...)
	return types.Errorf(types.ErrMalformedNameInfo, -1, "malformed name info for '%s': "+format, args...).WithToken(i.Name)
}
