package rdbms

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	tabledefinition "github.com/relloyd/country-metrics/table-definition"
)

func TestOpenDbConnection_Sqlite(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	log := logger.NewNullLogger()
	s := config.Store{Type: constants.ConnectionTypeSqlite, Path: filepath.Join(t.TempDir(), "m.db"), Table: "country_metrics"}
	conn, err := OpenDbConnection(ctx, log, s)
	g.Expect(err).NotTo(HaveOccurred())
	defer conn.Close()
	g.Expect(conn.Dialect.GetType()).To(Equal(constants.ConnectionTypeSqlite))
	g.Expect(conn.String()).To(ContainSubstring("country_metrics"))

	td := tabledefinition.NewCountryMetricsDefinition()
	ddl, err := conn.Dialect.CreateTableSql(conn.Table, td)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = conn.Db.ExecContext(ctx, ddl)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = conn.Db.ExecContext(ctx, ddl) // idempotent
	g.Expect(err).NotTo(HaveOccurred())

	// Insert more rows than one batch holds.
	tx, err := conn.Db.BeginTx(ctx, nil)
	g.Expect(err).NotTo(HaveOccurred())
	ins, err := conn.Dialect.NewBulkInserter(ctx, tx, conn.Table, td.ColumnNames())
	g.Expect(err).NotTo(HaveOccurred())
	for idx := 0; idx < sqliteInsertBatchSize*2+5; idx++ {
		g.Expect(ins.Insert(ctx, []interface{}{"n", "c", nil, int64(idx), 1.5, nil})).To(Succeed())
	}
	g.Expect(ins.Flush(ctx)).To(Succeed())
	g.Expect(ins.Close()).To(Succeed())
	g.Expect(tx.Commit()).To(Succeed())

	var count int
	g.Expect(conn.Db.QueryRowContext(ctx, "select count(*) from country_metrics").Scan(&count)).To(Succeed())
	g.Expect(count).To(Equal(sqliteInsertBatchSize*2 + 5))

	_, err = conn.Db.ExecContext(ctx, conn.Dialect.TruncateTableSql(conn.Table))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(conn.Db.QueryRowContext(ctx, "select count(*) from country_metrics").Scan(&count)).To(Succeed())
	g.Expect(count).To(Equal(0))
}

func TestOpenDbConnection_Errors(t *testing.T) {
	g := NewWithT(t)
	log := logger.NewNullLogger()
	_, err := OpenDbConnection(context.Background(), log, config.Store{Type: "oracle", Table: "t"})
	g.Expect(err).To(HaveOccurred())
	_, err = OpenDbConnection(context.Background(), log, config.Store{Type: constants.ConnectionTypeSqlite, Path: "x.db", Table: "Bad Name"})
	g.Expect(err).To(HaveOccurred())
}

func TestPostgresDialect_Sql(t *testing.T) {
	g := NewWithT(t)
	d := PostgresDialect{}
	st := SchemaTable{"geo.country_metrics"}
	ddl, err := d.CreateTableSql(st, tabledefinition.NewCountryMetricsDefinition())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ddl).To(HavePrefix("create table if not exists geo.country_metrics ("))
	g.Expect(ddl).To(ContainSubstring("id SERIAL PRIMARY KEY"))
	g.Expect(strings.Count(ddl, ",")).To(Equal(6))
	g.Expect(d.TruncateTableSql(st)).To(Equal("truncate table geo.country_metrics"))
}
