// Package wasihost runs the WASI build of exprlite (cmd/wasm/wasi) inside a
// wazero runtime, for hosts that want evaluation sandboxed in WebAssembly.
//
//	wasm, _ := os.ReadFile("exprlite.wasm")
//	r, err := wasihost.New(ctx, wasm)
//	...
//	defer r.Close(ctx)
//	resp, err := r.Eval(ctx, wasiproto.Request{Expression: "1 + 2"})
package wasihost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/sandrolain/exprlite/pkg/wasiproto"
)

// Runner holds a compiled module. Each Eval instantiates it afresh, so a
// Runner is safe for concurrent use.
type Runner struct {
	runtime wazero.Runtime
	module  wazero.CompiledModule
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New compiles wasm with WASI preview 1 imports.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Runner, error) {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.runtime = wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.runtime); err != nil {
		r.runtime.Close(ctx)
		return nil, fmt.Errorf("instantiating wasi: %w", err)
	}
	module, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		r.runtime.Close(ctx)
		return nil, fmt.Errorf("compiling module: %w", err)
	}
	r.module = module
	return r, nil
}

// Eval runs the module once with req on stdin and decodes its response.
// A module exit code of 1 is a failed evaluation, reported in the Response;
// anything else non-zero is an error.
func (r *Runner) Eval(ctx context.Context, req wasiproto.Request) (wasiproto.Response, error) {
	in, err := json.Marshal(req)
	if err != nil {
		return wasiproto.Response{}, err
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs("exprlite").
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := r.runtime.InstantiateModule(ctx, r.module, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		var exit *sys.ExitError
		if !errors.As(err, &exit) || exit.ExitCode() > 1 {
			r.logger.Warn("wasi module failed", slog.Any("error", err), slog.String("stderr", stderr.String()))
			return wasiproto.Response{}, fmt.Errorf("running module: %w", err)
		}
	}

	var resp wasiproto.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return wasiproto.Response{}, fmt.Errorf("decoding response: %w", err)
	}
	r.logger.Debug("wasi evaluation",
		slog.String("expression", req.Expression),
		slog.Bool("failed", resp.Failed()))
	return resp, nil
}

// Close releases the runtime.
func (r *Runner) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}
