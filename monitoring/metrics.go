package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects migration-wide progress counters, generalized from a
// generic "processed objects" collector into the tables/rows/batches this
// system actually migrates.
type Metrics struct {
	tablesMigrated   int64
	rowsCopied       int64
	failedBatches    int64
	bytesWritten     int64
	retryAttempts    int64
	recoverySuccess  int64
	totalLoadTime    int64 // nanoseconds
	errorCount       map[string]int64
	errorCountMutex  sync.RWMutex
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{errorCount: make(map[string]int64)}
}

func (m *Metrics) IncrementTablesMigrated()      { atomic.AddInt64(&m.tablesMigrated, 1) }
func (m *Metrics) AddRowsCopied(n int64)         { atomic.AddInt64(&m.rowsCopied, n) }
func (m *Metrics) IncrementFailedBatches()       { atomic.AddInt64(&m.failedBatches, 1) }
func (m *Metrics) AddBytesWritten(n int64)       { atomic.AddInt64(&m.bytesWritten, n) }
func (m *Metrics) IncrementRetryAttempts()       { atomic.AddInt64(&m.retryAttempts, 1) }
func (m *Metrics) IncrementRecoverySuccess()     { atomic.AddInt64(&m.recoverySuccess, 1) }

// RecordLoadTime adds duration to the running total used by AverageLoadTime.
func (m *Metrics) RecordLoadTime(d time.Duration) {
	atomic.AddInt64(&m.totalLoadTime, int64(d))
}

// IncrementErrorCount tallies one error of the given taxonomy kind.
func (m *Metrics) IncrementErrorCount(kind string) {
	m.errorCountMutex.Lock()
	m.errorCount[kind]++
	m.errorCountMutex.Unlock()
}

// AverageLoadTime returns the mean per-table load duration.
func (m *Metrics) AverageLoadTime() time.Duration {
	tables := atomic.LoadInt64(&m.tablesMigrated)
	if tables == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.totalLoadTime) / tables)
}

// FailureRate returns the number of failed batches per migrated table, as
// a percentage; a table with several failed batches counts each of them.
func (m *Metrics) FailureRate() float64 {
	tables := atomic.LoadInt64(&m.tablesMigrated)
	if tables == 0 {
		return 0
	}
	failed := atomic.LoadInt64(&m.failedBatches)
	return float64(failed) / float64(tables) * 100
}

// Snapshot returns every counter's current value for reporting.
func (m *Metrics) Snapshot() map[string]any {
	m.errorCountMutex.RLock()
	errs := make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errs[k] = v
	}
	m.errorCountMutex.RUnlock()

	return map[string]any{
		"tables_migrated":  atomic.LoadInt64(&m.tablesMigrated),
		"rows_copied":      atomic.LoadInt64(&m.rowsCopied),
		"failed_batches":   atomic.LoadInt64(&m.failedBatches),
		"bytes_written":    atomic.LoadInt64(&m.bytesWritten),
		"retry_attempts":   atomic.LoadInt64(&m.retryAttempts),
		"recovery_success": atomic.LoadInt64(&m.recoverySuccess),
		"average_load_time": m.AverageLoadTime(),
		"failure_rate":      m.FailureRate(),
		"error_count":       errs,
	}
}
