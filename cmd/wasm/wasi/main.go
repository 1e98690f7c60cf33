//go:build wasip1

// Command exprlite-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: a wasiproto.Request as JSON on stdin, a wasiproto.Response as
// JSON on stdout. Failed evaluations exit with code 1.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o exprlite.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"1 + 2"}' | wasmtime exprlite.wasm
//
// From Go, pkg/wasihost runs the module under wazero.
package main

import (
	"encoding/json"
	"os"

	"github.com/sandrolain/exprlite/pkg/wasiproto"
)

func writeResponse(r wasiproto.Response) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	if r.Failed() {
		os.Exit(1)
	}
	os.Exit(0)
}

func main() {
	var req wasiproto.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(wasiproto.Response{Error: "invalid request JSON: " + err.Error()})
	}
	writeResponse(wasiproto.Handle(req))
}
