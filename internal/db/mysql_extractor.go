package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/symbols/internal/schema"
)

// MySQLExtractor reads table snapshots from MySQL
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL extractor. An empty schemaName uses
// the database of the connection.
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	if schemaName == "" {
		schemaName = client.DatabaseName()
	}
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// Fetch extracts the layout of tableName and every row matching filter.
func (e *MySQLExtractor) Fetch(ctx context.Context, tableName, filter string) (*schema.RowSet, error) {
	table, err := e.extractTable(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
	}

	from := quoteMySQL(tableName)
	if e.schemaName != "" {
		from = quoteMySQL(e.schemaName) + "." + from
	}
	rows, err := queryRows(ctx, e.client.GetDB(), table, selectQuery(table, quoteMySQL, from, filter))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows of %s: %w", tableName, err)
	}

	return &schema.RowSet{Table: *table, Rows: rows}, nil
}

func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// extractTable extracts the columns and primary key of a single table
func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	table.PrimaryKey = pk

	return table, checkTable(table)
}

// extractColumns extracts column information for a table
func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.data_type
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable, dataType string

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &dataType); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.Kind = mysqlKind(dataType, col.Type)

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractPrimaryKey extracts primary key columns in key order
func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}
