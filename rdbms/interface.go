package rdbms

import (
	"context"
	"database/sql"

	tabledefinition "github.com/relloyd/country-metrics/table-definition"
)

// Dialect bundles the SQL that differs between supported stores.
type Dialect interface {
	GetType() string
	CreateTableSql(st SchemaTable, td tabledefinition.TableDefinition) (string, error)
	TruncateTableSql(st SchemaTable) string
	// NewBulkInserter prepares a streaming insert of columns into st within tx.
	NewBulkInserter(ctx context.Context, tx *sql.Tx, st SchemaTable, columns []string) (BulkInserter, error)
}

// BulkInserter streams rows into a table.
// Flush must be called after the last row; Close releases resources and is safe to defer.
type BulkInserter interface {
	Insert(ctx context.Context, values []interface{}) error
	Flush(ctx context.Context) error
	Close() error
}
