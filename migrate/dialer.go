// Package migrate wires the catalog, planner, applier and loader
// packages into the end-to-end migration runs the CLI exposes.
package migrate

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ora2pg/migrator/catalog"
	"github.com/ora2pg/migrator/config"
	"github.com/ora2pg/migrator/dbconn"
	"github.com/ora2pg/migrator/loader"
	"github.com/ora2pg/migrator/oradb"
	"github.com/ora2pg/migrator/pgtarget"
)

// Dialer opens one Oracle connection and one pgx connection per table
// worker, each dedicated to that worker for the table's duration.
type Dialer struct {
	oracleDSN string
	pgPool    *pgxpool.Pool
	retry     dbconn.RetryConfig
}

// NewDialer builds a Dialer over an already-open Postgres pool; each
// call to OpenSource opens its own dedicated Oracle connection since
// godror's *sql.DB pool semantics don't compose with one-cursor-per-
// worker ownership the way pgxpool.Acquire does.
func NewDialer(oracleCfg config.Oracle, pgPool *pgxpool.Pool, retry dbconn.RetryConfig) *Dialer {
	dsn := catalog.ConnectString(oracleCfg.User, oracleCfg.Password, oracleCfg.DSN)
	return &Dialer{oracleDSN: dsn, pgPool: pgPool, retry: retry}
}

func (d *Dialer) OpenSource(ctx context.Context) (loader.SourceConn, error) {
	db, err := dbconn.Open(ctx, "godror", d.oracleDSN, d.retry)
	if err != nil {
		return nil, err
	}
	return oradb.NewConn(db), nil
}

func (d *Dialer) OpenTarget(ctx context.Context) (loader.TargetConn, error) {
	conn, err := pgtarget.Acquire(ctx, d.pgPool)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// OpenOracleForCatalog opens a plain *sql.DB against Oracle for catalog
// introspection and row-count validation, outside the per-table worker
// pool lifecycle.
func OpenOracleForCatalog(ctx context.Context, cfg config.Oracle, retry dbconn.RetryConfig) (*sql.DB, error) {
	dsn := catalog.ConnectString(cfg.User, cfg.Password, cfg.DSN)
	return dbconn.Open(ctx, "godror", dsn, retry)
}

// AcquireCounter checks out one pgx connection for the report.Counter
// row-count queries run against the target during validation.
func AcquireCounter(ctx context.Context, pool *pgxpool.Pool) (*pgtarget.Conn, error) {
	return pgtarget.Acquire(ctx, pool)
}
