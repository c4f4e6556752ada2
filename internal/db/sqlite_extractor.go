package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/symbols/internal/schema"
)

// SQLiteExtractor reads table snapshots from SQLite
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// Fetch extracts the layout of tableName and every row matching filter.
func (e *SQLiteExtractor) Fetch(ctx context.Context, tableName, filter string) (*schema.RowSet, error) {
	table, err := e.extractTable(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
	}

	query := selectQuery(table, quoteSQLite, quoteSQLite(tableName), filter)
	rows, err := queryRows(ctx, e.client.GetDB(), table, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows of %s: %w", tableName, err)
	}

	return &schema.RowSet{Table: *table, Rows: rows}, nil
}

func quoteSQLite(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// extractTable reads PRAGMA table_info once: it yields both the columns and
// the primary key, ordered by key position.
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	defer rows.Close()

	table := &schema.Table{Name: tableName}
	type keyPart struct {
		name string
		pos  int
	}
	var pk []keyPart

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pkPos int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkPos); err != nil {
			return nil, err
		}

		table.Columns = append(table.Columns, schema.Column{
			Name: name,
			Type: colType,
			Kind: sqliteKind(colType),
			// Primary key columns may hold NULL in SQLite unless declared NOT NULL.
			Nullable: notNull == 0,
		})

		if pkPos > 0 {
			pk = append(pk, keyPart{name: name, pos: pkPos})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(pk, func(i, j int) bool { return pk[i].pos < pk[j].pos })
	for _, p := range pk {
		table.PrimaryKey = append(table.PrimaryKey, p.name)
	}

	return table, checkTable(table)
}
