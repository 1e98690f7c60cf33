// Command exprlite evaluates an expression and prints its value.
//
// Usage:
//
//	exprlite [flags] <expression>
//
// Bindings come from a YAML document (-bindings) or a SQLite table (-db and
// -table). With -watch the expression is evaluated again whenever the
// bindings document changes, until interrupted.
//
// Examples:
//
//	exprlite '1 + 2 * 3'
//	exprlite -bindings prices.yaml -format json 'total * (1 + vat)'
//	exprlite -tree -no-fold 'if(1 > 2, "a", "b")'
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
