package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/constants"
	tabledefinition "github.com/relloyd/country-metrics/table-definition"
	"github.com/xo/dburl"
)

func newPostgresConnection(s config.Store) (*Connection, error) {
	u, err := dburl.Parse(s.URL())
	if err != nil { // if the DSN could not be parsed...
		return nil, errors.Wrap(err, "error parsing postgres DSN")
	}
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "error opening postgres connection")
	}
	return &Connection{Db: db, Dialect: PostgresDialect{}}, nil
}

// PostgresDialect loads with COPY FROM STDIN.
type PostgresDialect struct{}

func (PostgresDialect) GetType() string {
	return constants.ConnectionTypePostgres
}

func (PostgresDialect) CreateTableSql(st SchemaTable, td tabledefinition.TableDefinition) (string, error) {
	return createTableSql(st, td, tabledefinition.NewPostgresDataTypeMapper())
}

func (PostgresDialect) TruncateTableSql(st SchemaTable) string {
	return "truncate table " + st.String()
}

func (PostgresDialect) NewBulkInserter(ctx context.Context, tx *sql.Tx, st SchemaTable, columns []string) (BulkInserter, error) {
	var copySql string
	if st.GetSchema() == "" {
		copySql = pq.CopyIn(st.GetTable(), columns...)
	} else {
		copySql = pq.CopyInSchema(st.GetSchema(), st.GetTable(), columns...)
	}
	stmt, err := tx.PrepareContext(ctx, copySql)
	if err != nil {
		return nil, errors.Wrapf(err, "error starting copy into %v", st)
	}
	return &copyInserter{stmt: stmt}, nil
}

// copyInserter buffers rows into an open COPY; Flush ends the COPY.
type copyInserter struct {
	stmt *sql.Stmt
}

func (c *copyInserter) Insert(ctx context.Context, values []interface{}) error {
	_, err := c.stmt.ExecContext(ctx, values...)
	return err
}

func (c *copyInserter) Flush(ctx context.Context) error {
	_, err := c.stmt.ExecContext(ctx)
	return err
}

func (c *copyInserter) Close() error {
	return c.stmt.Close()
}

func createTableSql(st SchemaTable, td tabledefinition.TableDefinition, m tabledefinition.Mapper) (string, error) {
	cols, err := td.ColumnDDL(m)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("create table if not exists %v (\n\t%v\n)", st.String(), strings.Join(cols, ",\n\t")), nil
}
