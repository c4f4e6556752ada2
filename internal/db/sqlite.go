package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens the database file at path over a single connection.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := openSQL(ctx, "sqlite3", path)
	if err != nil {
		return nil, err
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
