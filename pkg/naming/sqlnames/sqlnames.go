// Package sqlnames loads name bindings from a database table.
//
// The table has the columns name, type, value and expression, with the same
// meaning as the fields of a yamlnames.Entry. Any database/sql driver works;
// the tests and the command line tool use modernc.org/sqlite.
package sqlnames

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/naming/yamlnames"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// CreateTable creates the bindings table if it does not exist.
func CreateTable(ctx context.Context, db *sql.DB, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		name       TEXT PRIMARY KEY,
		type       TEXT,
		value      TEXT,
		expression TEXT
	)`)
	if err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}

// Insert stores entries in table.
func Insert(ctx context.Context, db *sql.DB, table string, entries ...yamlnames.Entry) error {
	if err := checkTable(table); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+table+` (name, type, value, expression) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, nullable(e.Type), nullable(e.Value), nullable(e.Expression)); err != nil {
			return fmt.Errorf("inserting binding %s: %w", e.Name, err)
		}
	}
	return tx.Commit()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Entries reads all rows of table ordered by name.
func Entries(ctx context.Context, db *sql.DB, table string) ([]yamlnames.Entry, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT name, type, value, expression FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var entries []yamlnames.Entry
	for rows.Next() {
		var name string
		var typ, value, expr sql.NullString
		if err := rows.Scan(&name, &typ, &value, &expr); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		entries = append(entries, yamlnames.Entry{
			Name:       name,
			Type:       typ.String,
			Value:      value.String,
			Expression: expr.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return entries, nil
}

// Load reads table and converts its rows into a naming.Map.
func Load(ctx context.Context, db *sql.DB, table string) (naming.Map, error) {
	entries, err := Entries(ctx, db, table)
	if err != nil {
		return nil, err
	}
	return yamlnames.Build(entries)
}
