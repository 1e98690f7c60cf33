package sqlnames_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/sandrolain/exprlite/pkg/naming/sqlnames"
	"github.com/sandrolain/exprlite/pkg/naming/yamlnames"
	"github.com/sandrolain/exprlite/pkg/parser"
	"github.com/sandrolain/exprlite/pkg/types"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "names.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := sqlnames.CreateTable(ctx, db, "names"); err != nil {
		t.Fatal(err)
	}
	err := sqlnames.Insert(ctx, db, "names",
		yamlnames.Entry{Name: "rate", Type: "number", Value: "0.2"},
		yamlnames.Entry{Name: "price", Type: "number", Value: "50"},
		yamlnames.Entry{Name: "total", Expression: "price * (1 + rate)"},
		yamlnames.Entry{Name: "tag", Type: "text", Value: "promo"},
	)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := sqlnames.Entries(ctx, db, "names")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 || entries[0].Name != "price" || entries[3].Name != "total" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	m, err := sqlnames.Load(ctx, db, "names")
	if err != nil {
		t.Fatal(err)
	}
	res, err := parser.New(parser.WithProviders(m)).ParseString("total", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Type() != types.Number || res.String() != "60" {
		t.Fatalf("total = %s (%s), want 60", res, res.Type())
	}
	if info, _ := m.Resolve("rate"); !types.Equal(info.Value, decimal.RequireFromString("0.2")) {
		t.Errorf("rate = %v", info.Value)
	}
}

func TestLoadInvalidRow(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := sqlnames.CreateTable(ctx, db, "names"); err != nil {
		t.Fatal(err)
	}
	if err := sqlnames.Insert(ctx, db, "names", yamlnames.Entry{Name: "flag", Type: "boolean", Value: "perhaps"}); err != nil {
		t.Fatal(err)
	}
	if _, err := sqlnames.Load(ctx, db, "names"); !errors.Is(err, types.ErrMalformedNameInfo) {
		t.Fatalf("expected malformed name info, got %v", err)
	}
}

func TestInvalidTableName(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	for _, table := range []string{"", "names; DROP TABLE x", "1names"} {
		if err := sqlnames.CreateTable(ctx, db, table); err == nil {
			t.Errorf("CreateTable(%q) should fail", table)
		}
		if _, err := sqlnames.Load(ctx, db, table); err == nil {
			t.Errorf("Load(%q) should fail", table)
		}
	}
}

func TestMissingTable(t *testing.T) {
	if _, err := sqlnames.Load(context.Background(), openDB(t), "absent"); err == nil {
		t.Fatal("expected an error for a missing table")
	}
}
