package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandrolain/exprlite/pkg/naming/sqlnames"
	"github.com/sandrolain/exprlite/pkg/naming/yamlnames"
)

// syncBuffer is a bytes.Buffer safe for the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeBindings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "names.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	bindings := writeBindings(t, `
names:
  - name: price
    type: number
    value: "40"
  - name: vat
    type: number
    value: "0.25"
  - name: gross
    expression: price * (1 + vat)
`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"arithmetic", []string{"1 + 2 * 3"}, "7\n"},
		{"text", []string{`"a" + "b"`}, "\"ab\"\n"},
		{"timestamp", []string{"#2024-01-31#"}, "#2024-01-31T00:00:00Z#\n"},
		{"json", []string{"-format", "json", `"x" in ["x"]`}, "true\n"},
		{"bindings", []string{"-bindings", bindings, "gross"}, "50\n"},
		{"tree", []string{"-tree", "-no-fold", "1 + 2"}, "(1 + 2) : number\n3\n"},
		{"tree folded", []string{"-tree", "1 + 2"}, "3 : number\n3\n"},
		{"no substitution", []string{"-tree", "-no-subst", "-bindings", bindings, "price"}, "<id:1> : number\n40\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runArgs(t, tt.args...)
			if code != exitOK {
				t.Fatalf("exit code %d: %s", code, errOut)
			}
			if out != tt.want {
				t.Fatalf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"no expression", nil, exitUsage, "exactly one expression"},
		{"bad format", []string{"-format", "xml", "1"}, exitUsage, "unknown format"},
		{"watch without bindings", []string{"-watch", "1"}, exitUsage, "-watch requires -bindings"},
		{"unknown flag", []string{"-nope", "1"}, exitUsage, "flag provided but not defined"},
		{"unknown identifier", []string{"x + 1"}, exitError, `parser error 2008 at position 0`},
		{"division", []string{"-no-fold", "1 / (1 - 1)"}, exitError, "division by zero"},
		{"missing bindings", []string{"-bindings", "/does/not/exist.yaml", "1"}, exitError, "reading bindings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runArgs(t, tt.args...)
			if code != tt.code {
				t.Fatalf("exit code %d, want %d: %s", code, tt.code, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Fatalf("stderr %q does not contain %q", errOut, tt.want)
			}
			if strings.Contains(errOut, "\x1b[") {
				t.Fatal("colour codes written to a non-terminal")
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	code, _, errOut := runArgs(t, "-h")
	if code != exitOK || !strings.Contains(errOut, "Usage: exprlite") {
		t.Fatalf("unexpected help output (%d): %s", code, errOut)
	}
}

func TestRunDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "names.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlnames.CreateTable(ctx, db, "rules"); err != nil {
		t.Fatal(err)
	}
	err = sqlnames.Insert(ctx, db, "rules",
		yamlnames.Entry{Name: "limit", Type: "number", Value: "10"},
		yamlnames.Entry{Name: "over", Expression: "limit > 5"},
	)
	db.Close()
	if err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runArgs(t, "-db", path, "-table", "rules", "over && limit % 3 == 1")
	if code != exitOK {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if out != "true\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRunWatch(t *testing.T) {
	path := writeBindings(t, "names: [{name: n, type: number, value: '1'}]")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"-watch", "-bindings", path, "n * 10"}, &stdout, &stderr)
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if strings.Contains(stdout.String(), want) {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("output %q does not contain %q (stderr %q)", stdout.String(), want, stderr.String())
	}

	waitFor("10\n")
	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte("names: [{name: n, type: number, value: '4'}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor("40\n")

	cancel()
	if code := <-done; code != exitOK {
		t.Fatalf("exit code %d: %s", code, stderr.String())
	}
}
