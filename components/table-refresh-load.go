package components

import (
	"context"

	"github.com/relloyd/country-metrics/artifact"
	"github.com/relloyd/country-metrics/config"
	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/rdbms"
	"github.com/relloyd/country-metrics/stream"
	tabledefinition "github.com/relloyd/country-metrics/table-definition"
)

// OpenConnectionFunc opens the destination store.
type OpenConnectionFunc func(ctx context.Context, log logger.Logger, s config.Store) (*rdbms.Connection, error)

type TableRefreshLoadConfig struct {
	Log            logger.Logger
	Name           string
	Store          artifact.Store
	InputLocation  string
	Connection     config.Store
	OpenConnection OpenConnectionFunc // optional; defaults to rdbms.OpenDbConnection
}

type LoadResult struct {
	Rows  int    `json:"rows"`
	Table string `json:"table"`
}

// NewTableRefreshLoad replaces the destination table contents with the final artifact.
// Create-if-absent, truncate and the bulk insert share one transaction so any failure
// rolls back to the previously committed rows. The connection is closed on every path.
func NewTableRefreshLoad(ctx context.Context, cfg *TableRefreshLoadConfig) (result LoadResult, err error) {
	cfg.Log.Info(cfg.Name, " is running")
	result.Table = cfg.Connection.Table
	in, err := cfg.Store.Read(ctx, cfg.InputLocation)
	if err != nil {
		return result, &MalformedArtifactError{Location: cfg.InputLocation, Err: err}
	}
	if err := in.CheckHeader(c.MetricFields); err != nil {
		return result, &MalformedArtifactError{Location: cfg.InputLocation, Err: err}
	}
	td := tabledefinition.NewCountryMetricsDefinition()
	if err := td.MatchesArtifact(); err != nil {
		return result, err
	}
	open := cfg.OpenConnection
	if open == nil {
		open = rdbms.OpenDbConnection
	}
	conn, err := open(ctx, cfg.Log, cfg.Connection)
	if err != nil {
		return result, &LoadTransactionError{Table: cfg.Connection.Table, Phase: "connect", Err: err}
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			cfg.Log.Warn(cfg.Name, " error closing connection: ", closeErr)
		}
	}()
	result.Rows, err = refreshTable(ctx, cfg, conn, td, in)
	if err != nil {
		return result, err
	}
	cfg.Log.Info(cfg.Name, " loaded ", result.Rows, " rows into ", conn)
	return result, nil
}

func refreshTable(ctx context.Context, cfg *TableRefreshLoadConfig, conn *rdbms.Connection, td tabledefinition.TableDefinition, in stream.Table) (rows int, err error) {
	fail := func(phase string, row int, e error) (int, error) {
		return 0, &LoadTransactionError{Table: conn.Table.String(), Phase: phase, Row: row, Err: e}
	}
	tx, err := conn.Db.BeginTx(ctx, nil)
	if err != nil {
		return fail("begin", 0, err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				cfg.Log.Warn(cfg.Name, " rollback error: ", rbErr)
			} else {
				cfg.Log.Warn(cfg.Name, " rolled back; ", conn.Table, " keeps its previous rows")
			}
		}
	}()
	ddl, err := conn.Dialect.CreateTableSql(conn.Table, td)
	if err != nil {
		return fail("create", 0, err)
	}
	cfg.Log.Debug(cfg.Name, " ", ddl)
	if _, err = tx.ExecContext(ctx, ddl); err != nil {
		return fail("create", 0, err)
	}
	if _, err = tx.ExecContext(ctx, conn.Dialect.TruncateTableSql(conn.Table)); err != nil {
		return fail("truncate", 0, err)
	}
	ins, err := conn.Dialect.NewBulkInserter(ctx, tx, conn.Table, td.ColumnNames())
	if err != nil {
		return fail("insert", 0, err)
	}
	defer func() {
		if closeErr := ins.Close(); closeErr != nil {
			cfg.Log.Debug(cfg.Name, " error closing bulk inserter: ", closeErr)
		}
	}()
	absentNames := 0
	for idx, row := range in.Rows {
		m, err := stream.MetricRecordFromRow(row)
		if err != nil {
			return fail("insert", idx+1, &MalformedArtifactError{Location: cfg.InputLocation, Row: idx + 1, Err: err})
		}
		if m.Name == nil {
			absentNames++
		}
		if err = ins.Insert(ctx, m.Values()); err != nil {
			return fail("insert", idx+1, err)
		}
	}
	if err = ins.Flush(ctx); err != nil {
		return fail("insert", 0, err)
	}
	if absentNames > 0 {
		cfg.Log.Warn(cfg.Name, " loading ", absentNames, " rows with a NULL name")
	}
	if err = tx.Commit(); err != nil {
		committed = true // a failed commit cannot be rolled back again
		return fail("commit", 0, err)
	}
	committed = true
	return in.Len(), nil
}
