package evaluator

import (
	"sync"

	"github.com/sandrolain/exprlite/pkg/naming"
)

// evalCtxPool recycles the per-call EvalContext of Eval. A context is owned
// by a single evaluation and never escapes it.
var evalCtxPool = sync.Pool{
	New: func() any { return new(EvalContext) },
}

// acquireEvalCtx returns a reset EvalContext from the pool.
func acquireEvalCtx(input any, names map[int]*naming.Details) *EvalContext {
	c := evalCtxPool.Get().(*EvalContext)
	c.input = input
	c.names = names
	c.depth = 0
	return c
}

// releaseEvalCtx clears c and returns it to the pool.
func releaseEvalCtx(c *EvalContext) {
	if c == nil {
		return
	}
	c.input = nil
	c.names = nil
	c.depth = 0
	evalCtxPool.Put(c)
}
