// Package dbconn opens database/sql connections with bounded retry and a
// ping-on-connect check, trimmed down from a general-purpose connection
// registry to the one thing every migration stage needs: open, verify,
// close on every exit path.
package dbconn

import (
	"context"
	"database/sql"
	"time"

	"github.com/ora2pg/migrator/migrateerr"
)

// RetryConfig bounds how hard Open tries before giving up.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

// DefaultRetryConfig matches the teacher connection manager's defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, Delay: time.Second, Timeout: 30 * time.Second}
}

// Open opens driver/dsn, retrying up to cfg.Attempts times with cfg.Delay
// between attempts, and verifies the connection with a timed ping before
// returning it. The caller owns the returned *sql.DB and must Close it.
func Open(ctx context.Context, driver, dsn string, cfg RetryConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		db, err = connect(ctx, driver, dsn, cfg.Timeout)
		if err == nil {
			return db, nil
		}
		if attempt < cfg.Attempts {
			select {
			case <-time.After(cfg.Delay):
			case <-ctx.Done():
				return nil, migrateerr.New(migrateerr.Connectivity, "context cancelled during connect retry", ctx.Err())
			}
		}
	}

	return nil, migrateerr.New(migrateerr.Connectivity, "failed to open connection after retries", err).
		WithContext("driver", driver).
		WithContext("attempts", cfg.Attempts)
}

func connect(ctx context.Context, driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
