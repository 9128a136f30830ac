package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.IncrementTablesMigrated()
	m.IncrementTablesMigrated()
	m.AddRowsCopied(100)
	m.IncrementFailedBatches()
	m.RecordLoadTime(10 * time.Second)
	m.RecordLoadTime(30 * time.Second)
	m.IncrementErrorCount("TableError")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap["tables_migrated"])
	assert.Equal(t, int64(100), snap["rows_copied"])
	assert.Equal(t, int64(1), snap["failed_batches"])
	assert.Equal(t, 20*time.Second, m.AverageLoadTime())
	assert.InDelta(t, 50.0, m.FailureRate(), 0.01)
}

func TestLoggerNilIsNoOp(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("hello", nil)
		l.Error("boom", map[string]any{"k": "v"})
	})
}
