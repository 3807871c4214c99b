package pluginz

import "sync/atomic"

// Metrics provides observability data for registry and scheduler
// monitoring. All counter fields use atomic operations for thread
// safety. Capacity fields are static and don't require atomics.
type Metrics struct {
	// Registry Counters (atomic operations required)
	ErrorsReported    int64 // OnError calls, including nil reports
	ErrorsSurfaced    int64 // Errors written to the default channel
	HandlerFailures   int64 // Error-handler failures contained by OnError
	MutationsRejected int64 // Setter/Reset calls rejected by lockdown

	// Scheduler Queue Metrics
	QueueDepth    int64 // Current tasks in the scheduler queue (atomic)
	QueueCapacity int64 // Scheduler queue capacity (static)

	// Scheduler Throughput Counters (atomic operations required)
	TasksScheduled int64 // Tasks accepted into the queue
	TasksProcessed int64 // Tasks that ran to completion
	TasksFailed    int64 // Tasks that panicked during execution
	TasksRejected  int64 // Tasks rejected due to a full queue
}

// snapshot returns an atomically-read copy of every counter.
func (m *Metrics) snapshot() Metrics {
	return Metrics{
		ErrorsReported:    atomic.LoadInt64(&m.ErrorsReported),
		ErrorsSurfaced:    atomic.LoadInt64(&m.ErrorsSurfaced),
		HandlerFailures:   atomic.LoadInt64(&m.HandlerFailures),
		MutationsRejected: atomic.LoadInt64(&m.MutationsRejected),
		QueueDepth:        atomic.LoadInt64(&m.QueueDepth),
		QueueCapacity:     atomic.LoadInt64(&m.QueueCapacity),
		TasksScheduled:    atomic.LoadInt64(&m.TasksScheduled),
		TasksProcessed:    atomic.LoadInt64(&m.TasksProcessed),
		TasksFailed:       atomic.LoadInt64(&m.TasksFailed),
		TasksRejected:     atomic.LoadInt64(&m.TasksRejected),
	}
}
