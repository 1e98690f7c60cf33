//go:build js && wasm

// Command exprlite-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `exprlite` object with the following API:
//
//	exprlite.version()                        → string
//	exprlite.eval(requestJSON)                → responseJSON
//	exprlite.compile(expression, namesJSON)   → { eval() → resultJSON }  (throws on error)
//
// requestJSON and responseJSON follow pkg/wasiproto. namesJSON is an array
// of bindings ({"name", "type", "value"} or {"name", "expression"}).
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o exprlite.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const resp = JSON.parse(exprlite.eval(JSON.stringify({expression: '1 + 2'})))
//	console.log(resp.result) // 3
package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/exprlite"
	"github.com/sandrolain/exprlite/pkg/naming/yamlnames"
	"github.com/sandrolain/exprlite/pkg/protoval"
	"github.com/sandrolain/exprlite/pkg/wasiproto"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

func jsEval(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("exprlite.eval requires 1 argument: request (JSON string)")
	}
	var req wasiproto.Request
	resp := wasiproto.Response{}
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		resp.Error = "invalid request JSON: " + err.Error()
	} else {
		resp = wasiproto.Handle(req)
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func jsCompile(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("exprlite.compile requires at least 1 argument: expression (string)")
	}
	var entries []yamlnames.Entry
	if len(args) > 1 && args[1].Truthy() {
		if err := json.Unmarshal([]byte(args[1].String()), &entries); err != nil {
			jsThrow(fmt.Sprintf("exprlite.compile: invalid names JSON: %v", err))
		}
	}
	names, err := yamlnames.Build(entries)
	if err != nil {
		jsThrow(fmt.Sprintf("exprlite.compile: %v", err))
	}

	fn, err := exprlite.Compile[any](args[0].String(), exprlite.WithProviders(names))
	if err != nil {
		jsThrow(fmt.Sprintf("exprlite.compile: %v", err))
	}

	evalFn := js.FuncOf(func(_ js.Value, _ []js.Value) (result any) {
		defer func() {
			if r := recover(); r != nil {
				jsThrow(fmt.Sprintf("compiled.eval: %v", r))
			}
		}()
		out, err := protoval.MarshalJSON(fn())
		if err != nil {
			jsThrow(fmt.Sprintf("compiled.eval: %v", err))
		}
		return string(out)
	})
	return js.ValueOf(map[string]any{"eval": evalFn})
}

func main() {
	api := map[string]any{
		"eval":    js.FuncOf(jsEval),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) any {
			return exprlite.Version()
		}),
	}
	js.Global().Set("exprlite", js.ValueOf(api))

	// Block forever, the JS event loop owns execution from here.
	select {}
}
