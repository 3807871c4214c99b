package pluginz

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// pool is the shared pooled Scheduler implementation behind the three
// standard schedulers.
//
// The pool:
//   - Executes tasks on a fixed set of worker goroutines
//   - Routes every task through the registry's scheduling hook on submit
//   - Recovers task panics and reports them as undeliverable errors
//   - Supports graceful shutdown that drains queued tasks
type pool struct {
	// Time abstraction for delayed scheduling
	clock clockz.Clock

	// Registry consulted for the scheduling hook and the error path
	hooks *Registry

	// Channel for receiving queued tasks
	tasks chan Task

	// WaitGroup to track worker goroutines for graceful shutdown
	wg sync.WaitGroup

	mu sync.RWMutex

	// Tracks if the pool has been closed
	closed bool

	// Metrics owned by this pool; QueueDepth and throughput counters
	// are updated atomically
	metrics Metrics
}

// newPool creates and starts a pool with the given configuration.
// Workers immediately begin draining the task queue.
func newPool(cfg schedConfig) *pool {
	p := &pool{
		clock: cfg.clock,
		hooks: cfg.hooks,
		tasks: make(chan Task, cfg.queueSize),
	}
	p.metrics.QueueCapacity = int64(cfg.queueSize)

	for i := 0; i < cfg.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Schedule queues task for execution after routing it through the
// registry's scheduling hook. Returns ErrQueueFull if the queue cannot
// accept more work and ErrSchedulerClosed after Close.
func (p *pool) Schedule(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	return p.submit(p.hooks.OnSchedule(task))
}

// ScheduleAfter queues task for execution once delay has elapsed. The
// scheduling hook is applied at submission time, not after the delay.
// A non-positive delay schedules immediately.
//
// A delayed task that finds the queue full or the pool closed when the
// delay elapses has no caller left to return to; its rejection is
// reported through the registry's undeliverable-error path.
func (p *pool) ScheduleAfter(task Task, delay time.Duration) error {
	if task == nil {
		return ErrNilTask
	}
	task = p.hooks.OnSchedule(task)
	if delay <= 0 {
		return p.submit(task)
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrSchedulerClosed
	}
	p.mu.RUnlock()

	go func() {
		<-p.clock.After(delay)
		if err := p.submit(task); err != nil {
			p.hooks.OnError(fmt.Errorf("delayed task dropped: %w", err))
		}
	}()
	return nil
}

// submit queues an already-hooked task.
func (p *pool) submit(task Task) error {
	// Channel send must be protected by the mutex to prevent a race with
	// close(): without it Close could close the channel between the
	// closed check and the send, causing a panic.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrSchedulerClosed
	}

	select {
	case p.tasks <- task:
		atomic.AddInt64(&p.metrics.QueueDepth, 1)
		atomic.AddInt64(&p.metrics.TasksScheduled, 1)
		return nil
	default:
		atomic.AddInt64(&p.metrics.TasksRejected, 1)
		return ErrQueueFull
	}
}

// worker is the main loop for worker goroutines. Each worker processes
// tasks from the queue until the channel is closed during shutdown.
func (p *pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		atomic.AddInt64(&p.metrics.QueueDepth, -1)
		p.run(task)
	}
}

// run executes a single task with panic recovery. A panicking task has
// no observer to deliver its failure to, so the recovered value is
// routed to the registry's undeliverable-error path.
func (p *pool) run(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			atomic.AddInt64(&p.metrics.TasksFailed, 1)
			p.hooks.OnError(panicError(rec))
			return
		}
		atomic.AddInt64(&p.metrics.TasksProcessed, 1)
	}()
	task()
}

// Metrics returns a snapshot of the pool's counters.
func (p *pool) Metrics() Metrics {
	return p.metrics.snapshot()
}

// Close shuts the pool down gracefully: it stops accepting new tasks,
// then waits for the workers to drain the queue. Delayed tasks whose
// timers have not fired yet are dropped and reported as undeliverable.
func (p *pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrAlreadyClosed
	}
	p.closed = true
	p.mu.Unlock()

	close(p.tasks)
	p.wg.Wait()
	return nil
}
