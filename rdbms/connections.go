package rdbms

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
)

const pingTimeout = 10 * time.Second

// Connection is an open destination store with the dialect and table it targets.
type Connection struct {
	Db      *sql.DB
	Dialect Dialect
	Table   SchemaTable
	desc    string
}

// OpenDbConnection opens and pings the store described by s.
func OpenDbConnection(ctx context.Context, log logger.Logger, s config.Store) (*Connection, error) {
	st := SchemaTable{SchemaTable: s.Table}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	log.Debug("opening connection type ", s.Type) // don't log credentials
	var conn *Connection
	var err error
	switch s.Type {
	case constants.ConnectionTypePostgres:
		conn, err = newPostgresConnection(s)
	case constants.ConnectionTypeSqlite:
		conn, err = newSqliteConnection(s)
	default:
		err = errors.Errorf("unsupported database type, %q", s.Type)
	}
	if err != nil {
		return nil, err
	}
	conn.Table = st
	conn.desc = s.String()
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = conn.Db.PingContext(pingCtx); err != nil {
		_ = conn.Db.Close()
		return nil, errors.Wrapf(err, "unable to connect to %v", conn.desc)
	}
	log.Info("Successful connection to: ", conn.desc)
	return conn, nil
}

func (c *Connection) Close() error {
	return c.Db.Close()
}

func (c *Connection) String() string {
	return c.desc
}
