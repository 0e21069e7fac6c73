// Package config holds process-wide tunables that are not part of any
// single call's arguments: env-var getters with hardcoded defaults
// rather than a config file or flag parser.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultQueryTimeout is used by nemo.Worker.Query when the caller
	// supplies a zero timeout budget.
	DefaultQueryTimeout = 5000 * time.Millisecond

	// DefaultMaterializeTimeout is used by nemo.Worker.Materialize when
	// the caller supplies a zero timeout budget.
	DefaultMaterializeTimeout = 10000 * time.Millisecond

	// DefaultWorkerQueueSize bounds the number of in-flight commands a
	// single nemo worker will buffer before submitting a command blocks.
	DefaultWorkerQueueSize = 32

	// WorkerHistoryLimit bounds the ring buffer of accepted statements
	// a worker retains for GetTraceJson diagnostics.
	WorkerHistoryLimit = 50
)

// WorkerQueueSize returns the configured worker command channel buffer
// size, overridable via NEMO_WORKER_QUEUE_SIZE for load testing.
func WorkerQueueSize() int {
	if v := os.Getenv("NEMO_WORKER_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultWorkerQueueSize
}

// QueryTimeout returns the default query timeout, overridable via
// NEMO_QUERY_TIMEOUT_MS for local experimentation.
func QueryTimeout() time.Duration {
	if v := os.Getenv("NEMO_QUERY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultQueryTimeout
}

// MaterializeTimeout returns the default materialize timeout, overridable
// via NEMO_MATERIALIZE_TIMEOUT_MS.
func MaterializeTimeout() time.Duration {
	if v := os.Getenv("NEMO_MATERIALIZE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultMaterializeTimeout
}
