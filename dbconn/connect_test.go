package dbconn

import (
	"context"
	"testing"
	"time"

	"github.com/ora2pg/migrator/migrateerr"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.Attempts != 3 || cfg.Delay != time.Second || cfg.Timeout != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestOpenUnknownDriverFailsImmediately(t *testing.T) {
	cfg := RetryConfig{Attempts: 2, Delay: time.Millisecond, Timeout: time.Second}
	_, err := Open(context.Background(), "no-such-driver-registered", "dsn", cfg)
	if err == nil {
		t.Fatal("expected an error for an unregistered driver")
	}
	if !migrateerr.Is(err, migrateerr.Connectivity) {
		t.Fatalf("expected a Connectivity-kind error, got %v", err)
	}
}

func TestOpenRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := RetryConfig{Attempts: 3, Delay: time.Hour, Timeout: time.Second}
	_, err := Open(ctx, "no-such-driver-registered", "dsn", cfg)
	if err == nil {
		t.Fatal("expected an error")
	}
}
