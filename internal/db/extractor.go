package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tordrt/symbols/internal/schema"
)

// Connection limits. A generation run holds a single connection and gives
// up quickly when the database is unreachable.
const (
	ConnectTimeout = time.Second
	IdleTimeout    = time.Second
)

// DefaultFilter selects every row.
const DefaultFilter = "1 = 1"

var (
	// ErrTableNotFound is returned when the requested table does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrNoPrimaryKey is returned for tables without a primary key.
	ErrNoPrimaryKey = errors.New("table has no primary key")
)

// Source fetches a complete table snapshot: the column layout, the ordered
// primary key and every row matching filter.
type Source interface {
	Fetch(ctx context.Context, table, filter string) (*schema.RowSet, error)
}

// checkTable validates introspection results.
func checkTable(table *schema.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("%w: %s", ErrTableNotFound, table.Name)
	}
	if len(table.PrimaryKey) == 0 {
		return fmt.Errorf("%w: %s", ErrNoPrimaryKey, table.Name)
	}
	return nil
}

// selectQuery builds the row query. Identifiers must already be quoted; the
// filter is a trusted SQL boolean expression.
func selectQuery(table *schema.Table, quote func(string) string, from, filter string) string {
	if strings.TrimSpace(filter) == "" {
		filter = DefaultFilter
	}
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = quote(c.Name)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), from, filter)
}

// convertRow turns raw driver values into typed values, one per column.
func convertRow(table *schema.Table, raw []any) (schema.Row, error) {
	if len(raw) != len(table.Columns) {
		return nil, fmt.Errorf("got %d values for %d columns", len(raw), len(table.Columns))
	}
	row := make(schema.Row, len(raw))
	for i, c := range table.Columns {
		v, err := schema.ValueOf(c.Kind, raw[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// queryRows runs query on a database/sql handle and converts every row.
func queryRows(ctx context.Context, db *sql.DB, table *schema.Table, query string) ([]schema.Row, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Row
	raw := make([]any, len(table.Columns))
	dest := make([]any, len(table.Columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row, err := convertRow(table, raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out), err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// openSQL bounds a database/sql handle to one connection and checks it is
// reachable within ConnectTimeout.
func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(IdleTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
