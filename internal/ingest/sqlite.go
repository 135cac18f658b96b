package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// ErrNoTables is returned when a database holds no user tables
var ErrNoTables = errors.New("database has no tables")

const sqliteDriver = "sqlite"

// openSQLite opens an existing database; sql.Open alone would create a
// missing file
func openSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// ListTables returns the user tables of a SQLite database in creation order
func ListTables(ctx context.Context, path string) ([]string, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return listTables(ctx, db)
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// LoadSQLite reads every row of one table. The table is opts.Table, or the
// one returned by opts.ChooseTable, or the only table in the database.
func LoadSQLite(ctx context.Context, path string, opts Options) (*dataset.Dataset, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	table := opts.Table
	switch {
	case table != "":
	case opts.ChooseTable != nil:
		if table, err = opts.ChooseTable(tables); err != nil {
			return nil, err
		}
	case len(tables) == 1:
		table = tables[0]
	default:
		return nil, fmt.Errorf("database has %d tables; choose one of %s", len(tables), strings.Join(tables, ", "))
	}
	if !contains(tables, table) {
		return nil, fmt.Errorf("table %q not found", table)
	}

	return readTable(ctx, db, table, opts.markers())
}

func readTable(ctx context.Context, db *sql.DB, table string, markers []string) (*dataset.Dataset, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %q: %w", table, err)
	}
	if len(names) == 0 {
		return nil, ErrEmpty
	}

	var cells [][]dataset.Value
	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %q: %w", table, err)
		}
		row := make([]dataset.Value, len(names))
		for j, v := range raw {
			row[j] = sqlValue(v, markers)
		}
		cells = append(cells, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", table, err)
	}
	return dataset.New(uniqueNames(names), cells)
}

// sqlValue converts a scanned SQLite value. NULL is missing; text goes
// through the same inference as file sources.
func sqlValue(v any, markers []string) dataset.Value {
	switch x := v.(type) {
	case nil:
		return dataset.Missing()
	case int64:
		return dataset.Int(x)
	case float64:
		return dataset.Float(x)
	case bool:
		if x {
			return dataset.Int(1)
		}
		return dataset.Int(0)
	case []byte:
		return dataset.Parse(string(x), markers)
	case string:
		return dataset.Parse(x, markers)
	default:
		return dataset.Parse(fmt.Sprint(x), markers)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
