package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteReader loads one table of a SQLite database file as a source.
// Research fixtures exported from hosted Postgres/Supabase often arrive as
// .db files, so the loader accepts them alongside CSV.
//
// Locations take the form path.db or path.db#table; without an explicit
// table the first user table in name order is read, which keeps repeated
// runs deterministic.
type SQLiteReader struct{}

var _ contract.SourceReader = (*SQLiteReader)(nil) // Compile-time check

var sqliteExts = map[string]struct{}{
	".db":      {},
	".sqlite":  {},
	".sqlite3": {},
}

// CanRead claims .db/.sqlite/.sqlite3 locations, with or without a #table
// suffix.
func (r *SQLiteReader) CanRead(location string) bool {
	path, _ := splitSQLiteLocation(location)
	_, ok := sqliteExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Read opens the database read-only and converts every row of the selected
// table to verbatim string values. SQL NULL becomes a null Value; nothing
// else is coerced here.
func (r *SQLiteReader) Read(ctx context.Context, location string) (*schema.Dataset, error) {
	path, table := splitSQLiteLocation(location)

	if _, err := os.Stat(path); err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}
	defer func() { _ = db.Close() }()
	// Limit SQLite to a single open connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if table == "" {
		table, err = firstUserTable(ctx, db)
		if err != nil {
			return nil, &contract.SourceNotFoundError{Location: location, Err: err}
		}
	}
	if err := validateTableName(table); err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, table))
	if err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}

	ds := &schema.Dataset{Label: location}
	for _, name := range cols {
		ds.Fields = append(ds.Fields, schema.Field{Name: name, Kind: schema.StringKind})
	}

	cells := make([]sql.NullString, len(cols))
	scan := make([]any, len(cols))
	for i := range cells {
		scan[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, &contract.SourceNotFoundError{Location: location, Err: err}
		}
		rec := make(schema.Record, len(cols))
		for i, name := range cols {
			if cells[i].Valid {
				rec[name] = schema.StringValue(cells[i].String)
			} else {
				rec[name] = schema.Null()
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}
	return ds, nil
}

// splitSQLiteLocation separates the file path from an optional #table suffix.
func splitSQLiteLocation(location string) (path, table string) {
	path, table, _ = strings.Cut(location, "#")
	return path, table
}

// firstUserTable returns the alphabetically first non-internal table.
func firstUserTable(ctx context.Context, db *sql.DB) (string, error) {
	row := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name LIMIT 1`)
	var name string
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("database contains no tables")
		}
		return "", err
	}
	return name, nil
}

// validateTableName rejects table names that could escape the quoted
// identifier in the SELECT.
func validateTableName(table string) error {
	if table == "" || strings.ContainsAny(table, `"';`) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}
