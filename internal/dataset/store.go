// Package dataset provides the per-conversion SQL store behind the
// dynamic-tables and dynamic-queries extras.
//
// Tables registered from the document are loaded into an in-memory SQLite
// database; inline queries run against it. A Store belongs to exactly one
// conversion and must be closed when the conversion ends.
package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Sentinel errors for dataset operations.
var (
	ErrInvalidName = errors.New("invalid dataset name")
	ErrNoColumns   = errors.New("dataset has no columns")
	ErrClosed      = errors.New("dataset store is closed")
	ErrQuery       = errors.New("query failed")
)

// namePattern restricts dataset names to plain SQL identifiers so they can be
// referenced unquoted in queries.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is an in-memory SQL database scoped to one conversion.
type Store struct {
	db *sql.DB
}

// Open creates an empty in-memory store.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening dataset store: %w", err)
	}

	// Every connection to ":memory:" is a separate database; pin to one.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to dataset store: %w", err)
	}

	return &Store{db: db}, nil
}

// ValidName reports whether name can be used as a dataset name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Register creates (or replaces) table name with the given columns and rows.
// Cells that parse as integers or floats are stored as numbers so that
// aggregates behave; everything else is stored as text. Short rows are padded
// with NULL, extra cells are dropped.
func (s *Store) Register(ctx context.Context, name string, columns []string, rows [][]string) error {
	if s.db == nil {
		return ErrClosed
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: %q", ErrNoColumns, name)
	}

	cols := normalizeColumns(columns)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(quoted, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(cols))
		for i := range cols {
			if i < len(row) {
				args[i] = typedCell(row[i])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("registering %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}
	return nil
}

// Query runs query and returns column names and rows rendered as text.
// NULL values are returned as empty strings.
func (s *Store) Query(ctx context.Context, query string) ([]string, [][]string, error) {
	if s.db == nil {
		return nil, nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	var out [][]string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	return columns, out, nil
}

// Close releases the database. Close is safe to call multiple times.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// normalizeColumns fills empty header cells and de-duplicates names so the
// CREATE TABLE statement is always valid.
func normalizeColumns(columns []string) []string {
	seen := make(map[string]int, len(columns))
	out := make([]string, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			c = "col" + strconv.Itoa(i+1)
		}
		key := strings.ToLower(c)
		if n := seen[key]; n > 0 {
			seen[key] = n + 1
			c = c + "_" + strconv.Itoa(n+1)
		} else {
			seen[key] = 1
		}
		out[i] = c
	}
	return out
}

// quoteIdent quotes an SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// typedCell converts a cell to int64 or float64 when it is numeric.
func typedCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return cell
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

// formatValue renders a scanned SQL value as text.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
