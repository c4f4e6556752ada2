package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/symbols/internal/schema"
)

// PostgresExtractor reads table snapshots from PostgreSQL
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new PostgreSQL extractor for schemaName.
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// Fetch extracts the layout of tableName and every row matching filter.
func (e *PostgresExtractor) Fetch(ctx context.Context, tableName, filter string) (*schema.RowSet, error) {
	table, err := e.extractTable(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
	}

	from := pgx.Identifier{e.schema, tableName}.Sanitize()
	query := selectQuery(table, func(s string) string { return pgx.Identifier{s}.Sanitize() }, from, filter)
	rows, err := e.fetchRows(ctx, table, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows of %s: %w", tableName, err)
	}

	return &schema.RowSet{Table: *table, Rows: rows}, nil
}

// extractTable extracts the columns and primary key of a single table
func (e *PostgresExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
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

// normalizePostgresType maps verbose SQL type names to commonly-used PostgreSQL equivalents
func normalizePostgresType(dataType, udtName string, charMaxLength *int) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return "varchar"
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "ARRAY":
		if len(udtName) > 0 && udtName[0] == '_' {
			return udtName[1:] + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

// extractColumns extracts column information for a table
func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.udt_name,
			c.character_maximum_length
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable, dataType, udtName string
		var charMaxLength *int

		if err := rows.Scan(&col.Name, &dataType, &nullable, &udtName, &charMaxLength); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.Type = normalizePostgresType(dataType, udtName, charMaxLength)
		col.Kind = postgresKind(dataType)

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractPrimaryKey extracts primary key columns in key order
func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
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

// fetchRows reads every row of the snapshot. pgx decodes values into their
// natural Go types, which convertRow narrows to the column kinds.
func (e *PostgresExtractor) fetchRows(ctx context.Context, table *schema.Table, query string) ([]schema.Row, error) {
	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Row
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
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
