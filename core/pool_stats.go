package core

import (
	"fmt"

	"github.com/searchktools/fast-telemetry/core/pools"
)

// PoolStats represents statistics for the engine pools
type PoolStats struct {
	Workers pools.WorkerPoolStats
	Buffers pools.BytePoolStats
}

// PoolStats returns statistics for the worker and read buffer pools.
// Worker stats are zero until Run has started the pool.
func (e *Engine) PoolStats() PoolStats {
	stats := PoolStats{
		Buffers: e.buffers.Stats(),
	}
	if pool := e.pool.Load(); pool != nil {
		stats.Workers = pool.Stats()
	} else {
		stats.Workers.NumWorkers = e.workers
	}
	return stats
}

// PoolStatsText returns pool statistics as human-readable text
func (e *Engine) PoolStatsText() string {
	s := e.PoolStats()
	return fmt.Sprintf(`Worker Pool:
  Workers:   %d
  Submitted: %d
  Completed: %d
  Pending:   %d
  Abandoned: %d
  Panicked:  %d
  Steals:    %d ok / %d failed

Read Buffers:
  Gets:   %d
  Puts:   %d
  Misses: %d
`,
		s.Workers.NumWorkers, s.Workers.TasksSubmitted, s.Workers.TasksCompleted,
		s.Workers.TasksPending, s.Workers.TasksAbandoned, s.Workers.TasksPanicked,
		s.Workers.StealsSuccess, s.Workers.StealsFailed,
		s.Buffers.Gets, s.Buffers.Puts, s.Buffers.Misses,
	)
}
