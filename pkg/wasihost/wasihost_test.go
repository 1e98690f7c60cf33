package wasihost_test

import (
	"context"
	"os"
	"testing"

	"github.com/sandrolain/exprlite/pkg/wasihost"
	"github.com/sandrolain/exprlite/pkg/wasiproto"
)

func TestNewRejectsInvalidModule(t *testing.T) {
	if _, err := wasihost.New(context.Background(), []byte("not wasm")); err == nil {
		t.Fatal("expected a compile error")
	}
}

// TestEval needs a module built with
//
//	GOOS=wasip1 GOARCH=wasm go build -o exprlite.wasm ./cmd/wasm/wasi
//
// and its path in EXPRLITE_WASM.
func TestEval(t *testing.T) {
	path := os.Getenv("EXPRLITE_WASM")
	if path == "" {
		t.Skip("EXPRLITE_WASM not set")
	}
	wasm, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r, err := wasihost.New(ctx, wasm)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)

	resp, err := r.Eval(ctx, wasiproto.Request{Expression: "1 + 2"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Failed() || string(resp.Result) != "3" || resp.Type != "number" {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp, err = r.Eval(ctx, wasiproto.Request{Expression: "unknown"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Failed() || resp.Code != 2008 {
		t.Fatalf("expected an unknown identifier failure, got %+v", resp)
	}
}
