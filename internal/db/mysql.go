package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db     *sql.DB
	dbName string
}

// NewMySQLClient opens a single connection bounded by ConnectTimeout.
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.Timeout = ConnectTimeout

	db, err := openSQL(ctx, "mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	return &MySQLClient{db: db, dbName: cfg.DBName}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// DatabaseName returns the database selected by the connection string.
func (c *MySQLClient) DatabaseName() string {
	return c.dbName
}
