package rdbms

import (
	"context"
	"database/sql"

	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/constants"
	tabledefinition "github.com/relloyd/country-metrics/table-definition"
	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// sqliteInsertBatchSize is the number of rows bound into each multi-row INSERT.
const sqliteInsertBatchSize = 100

func newSqliteConnection(s config.Store) (*Connection, error) {
	db, err := sql.Open(sqliteDriverName, s.Path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // one writer; also keeps :memory: databases on a single connection
	return &Connection{Db: db, Dialect: SqliteDialect{}}, nil
}

// SqliteDialect loads with batched multi-row INSERT statements.
type SqliteDialect struct{}

func (SqliteDialect) GetType() string {
	return constants.ConnectionTypeSqlite
}

func (SqliteDialect) CreateTableSql(st SchemaTable, td tabledefinition.TableDefinition) (string, error) {
	return createTableSql(st, td, tabledefinition.NewSqliteDataTypeMapper())
}

// TruncateTableSql uses DELETE since SQLite has no TRUNCATE.
func (SqliteDialect) TruncateTableSql(st SchemaTable) string {
	return "delete from " + st.String()
}

func (SqliteDialect) NewBulkInserter(_ context.Context, tx *sql.Tx, st SchemaTable, columns []string) (BulkInserter, error) {
	return &batchInserter{
		tx:    tx,
		batch: NewSqlInsertTxtBatch(st, columns, sqliteInsertBatchSize),
	}, nil
}

// batchInserter executes an INSERT each time the batch fills and once more on Flush.
type batchInserter struct {
	tx    *sql.Tx
	batch *SqlInsertTxtBatch
}

func (b *batchInserter) Insert(ctx context.Context, values []interface{}) error {
	full, err := b.batch.AddValuesToBatch(values)
	if err != nil {
		return err
	}
	if full {
		return b.exec(ctx)
	}
	return nil
}

func (b *batchInserter) Flush(ctx context.Context) error {
	if b.batch.RowsInBatch() == 0 {
		return nil
	}
	return b.exec(ctx)
}

func (b *batchInserter) exec(ctx context.Context) error {
	_, err := b.tx.ExecContext(ctx, b.batch.GetStatement(), b.batch.GetValues()...)
	b.batch.InitBatch()
	return err
}

func (b *batchInserter) Close() error {
	return nil
}
