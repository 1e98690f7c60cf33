//go:build (js && wasm) || wasip1

package evaluator

// WebAssembly stacks are much smaller than native ones; lower the default
// nesting limit for Evaluators created in this process.
func init() {
	defaultMaxDepth = 2000
}
