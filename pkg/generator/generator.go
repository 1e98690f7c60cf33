// Package generator turns parse results into Go callables.
//
// Every tree node is lowered once into a closure; calling the result walks
// closures only, without type switches or map lookups. Bindings are checked
// against the requested input and output types before any code is built:
//
//	fn, err := generator.FuncOf[Order, decimal.Decimal](res)
//	if err != nil {
//	    return err
//	}
//	total := fn(order)
//
// A division or remainder by zero at run time panics with
// ErrDivisionByZero.
package generator

import (
	"reflect"

	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/parser"
	"github.com/sandrolain/exprlite/pkg/types"
)

// ErrDivisionByZero is the value generated code panics with when a divisor
// is zero at run time.
var ErrDivisionByZero = types.ErrDivisionByZero

// Func builds a parameterless callable. It fails with ErrInputRequired when
// the expression reads instance members or compiled sub-expressions.
func Func[Out any](res *parser.Result) (func() Out, error) {
	fn, err := build[Out](res, nil)
	if err != nil {
		return nil, err
	}
	return func() Out { return fn(nil) }, nil
}

// FuncOf builds a callable taking the input value members are read from.
func FuncOf[In, Out any](res *parser.Result) (func(In) Out, error) {
	fn, err := build[Out](res, reflect.TypeFor[In]())
	if err != nil {
		return nil, err
	}
	return func(in In) Out { return fn(in) }, nil
}

// Dynamic builds an untyped callable. in is the input type, or nil for an
// expression without input. The result is the canonical value of the
// expression.
func Dynamic(res *parser.Result, in reflect.Type) (func(any) any, error) {
	return build[any](res, in)
}

func build[Out any](res *parser.Result, in reflect.Type) (fn func(any) Out, err error) {
	if err := checkOutput(res.Type(), reflect.TypeFor[Out]()); err != nil {
		return nil, err
	}
	if err := checkInput(res.Names, in); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*types.Error); ok {
				fn, err = nil, e
				return
			}
			panic(r)
		}
	}()

	l := &lowerer{names: res.Names}
	return lowerAs[Out](l, res.Root), nil
}

// checkOutput accepts the empty interface or the Go type of the expression.
func checkOutput(static types.Type, out reflect.Type) error {
	if out.Kind() == reflect.Interface && out.NumMethod() == 0 {
		return nil
	}
	t, ok := types.TypeOf(out)
	if !ok {
		return types.Errorf(types.ErrOutputType, -1,
			"output type %v is not supported, expected %v or any", out, static.GoType())
	}
	if t != static {
		return types.Errorf(types.ErrOutputNotAssignable, -1,
			"expression of type %s cannot be returned as %v", static, out)
	}
	return nil
}

// checkInput validates every binding that reads the input value.
func checkInput(names map[int]*naming.Details, in reflect.Type) error {
	for _, id := range sortedIDs(names) {
		info := names[id].Info
		switch info.Kind {
		case naming.Member:
			if info.Member.Static {
				continue
			}
			if in == nil {
				return inputRequired(info)
			}
			if info.Member.Owner != in {
				return types.Errorf(types.ErrMemberOwner, -1,
					"member '%s' belongs to %v, input is %v", info.Name, info.Member.Owner, in).WithToken(info.Name)
			}
		case naming.Compiled:
			params := info.Func.Params
			if len(params) != 1 {
				return types.Errorf(types.ErrCompiledArity, -1,
					"compiled expression '%s' takes %d parameters, expected 1", info.Name, len(params)).WithToken(info.Name)
			}
			if in == nil {
				return inputRequired(info)
			}
			if params[0] != in {
				return types.Errorf(types.ErrCompiledParamType, -1,
					"compiled expression '%s' takes %v, input is %v", info.Name, params[0], in).WithToken(info.Name)
			}
		}
	}
	return nil
}

func inputRequired(info naming.Info) *types.Error {
	return types.Errorf(types.ErrInputRequired, -1,
		"the identifier '%s' reads the input value, use a callable with an input parameter", info.Name).WithToken(info.Name)
}
