// Package exprlite compiles small typed expressions into Go callables.
//
// Expressions work on four static types (text, number, boolean and
// timestamp) and are checked when they are parsed, so a compiled callable
// never fails on a type error. Identifiers are resolved through name
// providers: plain values, other expressions, members of the input value
// or precompiled functions.
//
// # Quick Start
//
//	// Input-less evaluation
//	v, err := exprlite.Eval(`if(2 > 1, "yes", "no")`)
//
//	// Compile once, call many times
//	total, err := exprlite.CompileOf[Order, decimal.Decimal](`price * qty * (1 + vat)`,
//	    exprlite.WithProviders(naming.Map{
//	        "price": naming.FromField("price", func(o Order) decimal.Decimal { return o.Price }),
//	        "qty":   naming.FromField("qty", func(o Order) int { return o.Qty }),
//	    }),
//	    exprlite.WithValues(map[string]any{"vat": 0.2}),
//	)
//	v := total(order)
//
//	// Parse once, generate many callables
//	c := exprlite.New(exprlite.WithCaching(true))
//	p, err := c.Parse(`price > 100`)
//	fn, err := exprlite.FuncOf[Order, bool](p)
//
// # More Information
//
//   - Scanner: github.com/sandrolain/exprlite/pkg/scanner
//   - Parser: github.com/sandrolain/exprlite/pkg/parser
//   - Generator: github.com/sandrolain/exprlite/pkg/generator
//   - Names: github.com/sandrolain/exprlite/pkg/naming
//   - Types and errors: github.com/sandrolain/exprlite/pkg/types
package exprlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandrolain/exprlite/pkg/evaluator"
	"github.com/sandrolain/exprlite/pkg/generator"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Version returns the current version of exprlite.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses src and generates a parameterless callable.
//
// Example:
//
//	fn, err := exprlite.Compile[string](`"v" + "1"`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(fn())
func Compile[Out any](src string, opts ...Option) (func() Out, error) {
	p, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return Func[Out](p)
}

// CompileOf parses src and generates a callable taking the input value.
func CompileOf[In, Out any](src string, opts ...Option) (func(In) Out, error) {
	p, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return FuncOf[In, Out](p)
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies safe initialization of global variables.
func MustCompile[Out any](src string, opts ...Option) func() Out {
	fn, err := Compile[Out](src, opts...)
	if err != nil {
		panic(fmt.Sprintf("exprlite: Compile(%q): %v", src, err))
	}
	return fn
}

// Parse parses src with a one-off Compiler.
func Parse(src string, opts ...Option) (*Program, error) {
	return New(opts...).Parse(src)
}

// Func generates a parameterless callable from p.
func Func[Out any](p *Program) (func() Out, error) {
	return generator.Func[Out](p.result)
}

// FuncOf generates a callable taking the input value from p.
func FuncOf[In, Out any](p *Program) (func(In) Out, error) {
	return generator.FuncOf[In, Out](p.result)
}

// Eval compiles and calls an expression without input in a single call.
// A division by zero is returned as an error.
//
// Example:
//
//	v, err := exprlite.Eval(`1 + 2`)
func Eval(src string, opts ...Option) (any, error) {
	p, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return p.Value()
}

// Value generates a parameterless callable from p and calls it.
// A division by zero is returned as an error.
func (p *Program) Value() (result any, err error) {
	fn, err := Func[any](p)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, types.ErrDivisionByZero) {
				result, err = nil, e
				return
			}
			panic(r)
		}
	}()
	return fn(), nil
}

// EvalOf parses src and interprets it against input without generating
// code. For repeated evaluations of the same expression, use CompileOf.
func EvalOf(src string, input any, opts ...Option) (any, error) {
	return EvalWithContext(context.Background(), src, input, opts...)
}

// EvalWithContext is like EvalOf with a custom context.
func EvalWithContext(ctx context.Context, src string, input any, opts ...Option) (any, error) {
	c := New(opts...)
	p, err := c.Parse(src)
	if err != nil {
		return nil, err
	}
	ev := evaluator.New(
		evaluator.WithLogger(c.logger),
		evaluator.WithDebug(c.opts.Debug),
	)
	return ev.Eval(ctx, p.result.Root, p.result.Names, input)
}
