package evaluator

import (
	"fmt"
	"reflect"

	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/types"
)

// EvalContext holds the state of one evaluation.
type EvalContext struct {
	// input is the value passed to member getters and compiled sub-expressions
	input any

	// names maps identifier ids to their bindings
	names map[int]*naming.Details

	// depth tracks recursion depth to prevent stack overflow
	depth int
}

// NewContext creates an evaluation context.
func NewContext(input any, names map[int]*naming.Details) *EvalContext {
	return &EvalContext{
		input: input,
		names: names,
	}
}

// Input returns the input value.
func (c *EvalContext) Input() any {
	return c.input
}

// Depth returns the current recursion depth.
func (c *EvalContext) Depth() int {
	return c.depth
}

// lookup resolves an identifier to its value.
func (c *EvalContext) lookup(id int) (any, error) {
	d, ok := c.names[id]
	if !ok {
		return nil, fmt.Errorf("identifier %d has no binding", id)
	}

	info := d.Info
	switch info.Kind {
	case naming.Plain:
		return info.Value, nil
	case naming.Member:
		m := info.Member
		if m.Static {
			return m.Get(nil), nil
		}
		if got := reflect.TypeOf(c.input); got != m.Owner {
			return nil, types.Errorf(types.ErrMemberOwner, -1,
				"member '%s' belongs to %v, input is %v", info.Name, m.Owner, got).WithToken(info.Name)
		}
		return m.Get(c.input), nil
	case naming.Compiled:
		f := info.Func
		if len(f.Params) != 1 {
			return nil, types.Errorf(types.ErrCompiledArity, -1,
				"compiled expression '%s' takes %d parameters, expected 1", info.Name, len(f.Params)).WithToken(info.Name)
		}
		if got := reflect.TypeOf(c.input); got != f.Params[0] {
			return nil, types.Errorf(types.ErrCompiledParamType, -1,
				"compiled expression '%s' takes %v, input is %v", info.Name, f.Params[0], got).WithToken(info.Name)
		}
		return f.Call(c.input), nil
	}
	return nil, fmt.Errorf("identifier '%s' has unexpected binding kind %s", info.Name, info.Kind)
}
