package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	_ "modernc.org/sqlite"

	"github.com/sandrolain/exprlite"
	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/naming/sqlnames"
	"github.com/sandrolain/exprlite/pkg/naming/yamlnames"
	"github.com/sandrolain/exprlite/pkg/optimizer"
	"github.com/sandrolain/exprlite/pkg/protoval"
	"github.com/sandrolain/exprlite/pkg/types"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type config struct {
	bindings string
	db       string
	table    string
	name     string
	tree     bool
	format   string
	noSubst  bool
	noFold   bool
	levels   int
	watch    bool
	verbose  bool
	expr     string
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("exprlite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.bindings, "bindings", "", "YAML bindings document")
	fs.StringVar(&cfg.db, "db", "", "SQLite database holding bindings")
	fs.StringVar(&cfg.table, "table", "names", "bindings table in -db")
	fs.StringVar(&cfg.name, "name", "", "name the expression is bound to, for self reference checks")
	fs.BoolVar(&cfg.tree, "tree", false, "print the optimized tree before the value")
	fs.StringVar(&cfg.format, "format", "text", "output format: text or json")
	fs.BoolVar(&cfg.noSubst, "no-subst", false, "disable identifier substitution")
	fs.BoolVar(&cfg.noFold, "no-fold", false, "disable constant folding")
	fs.IntVar(&cfg.levels, "levels", optimizer.DefaultLevels, "constant folding rounds")
	fs.BoolVar(&cfg.watch, "watch", false, "evaluate again when the -bindings document changes")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: exprlite [flags] <expression>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return cfg, errors.New("exactly one expression is required")
	}
	cfg.expr = fs.Arg(0)

	switch {
	case cfg.format != "text" && cfg.format != "json":
		return cfg, fmt.Errorf("unknown format %q", cfg.format)
	case cfg.watch && cfg.bindings == "":
		return cfg, errors.New("-watch requires -bindings")
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	color := useColor(stderr)

	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		printError(stderr, color, err)
		return exitUsage
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var providers []naming.Provider
	var source *yamlnames.Source
	if cfg.bindings != "" {
		source, err = yamlnames.Open(cfg.bindings, yamlnames.WithLogger(logger))
		if err != nil {
			printError(stderr, color, err)
			return exitError
		}
		providers = append(providers, source)
	}
	if cfg.db != "" {
		names, err := loadDB(ctx, cfg.db, cfg.table)
		if err != nil {
			printError(stderr, color, err)
			return exitError
		}
		providers = append(providers, names)
	}

	compiler := exprlite.New(
		exprlite.WithProviders(providers...),
		exprlite.WithName(cfg.name),
		exprlite.WithIdentifierSubstitution(!cfg.noSubst),
		exprlite.WithConstantFolding(!cfg.noFold),
		exprlite.WithOptimizationLevels(cfg.levels),
		exprlite.WithLogger(logger),
		exprlite.WithDebug(cfg.verbose),
	)

	code := exitOK
	if err := evaluate(compiler, cfg, stdout); err != nil {
		printError(stderr, color, err)
		code = exitError
	}
	if !cfg.watch {
		return code
	}

	err = source.Watch(ctx, func(err error) {
		if err == nil {
			err = evaluate(compiler, cfg, stdout)
		}
		if err != nil {
			printError(stderr, color, err)
		}
	})
	if err != nil {
		printError(stderr, color, err)
		return exitError
	}
	return exitOK
}

func loadDB(ctx context.Context, path, table string) (naming.Map, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()
	return sqlnames.Load(ctx, db, table)
}

func evaluate(c *exprlite.Compiler, cfg config, w io.Writer) error {
	p, err := c.Parse(cfg.expr)
	if err != nil {
		return err
	}
	if cfg.tree {
		fmt.Fprintf(w, "%s : %s\n", p, p.Type())
	}
	v, err := p.Value()
	if err != nil {
		return err
	}

	if cfg.format == "json" {
		data, err := protoval.MarshalJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", data)
		return nil
	}
	fmt.Fprintln(w, ast.FormatValue(v))
	return nil
}

func useColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printError(w io.Writer, color bool, err error) {
	msg := "error: " + err.Error()
	var e *types.Error
	if errors.As(err, &e) && e.Token != "" {
		msg += fmt.Sprintf(" (near %q)", e.Token)
	}
	if color {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(w, msg)
}
