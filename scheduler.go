package pluginz

import (
	"runtime"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Scheduler executes units of work. The registry's scheduler hooks
// operate on this interface: Init* hooks substitute implementations at
// singleton construction, per-access hooks redirect callers afterwards.
type Scheduler interface {
	// Schedule queues task for execution as soon as a worker is free.
	Schedule(task Task) error

	// ScheduleAfter queues task for execution once delay has elapsed.
	ScheduleAfter(task Task, delay time.Duration) error

	// Metrics returns a snapshot of the scheduler's counters.
	Metrics() Metrics

	// Close shuts the scheduler down, draining already-queued work.
	Close() error
}

// SchedulerOption configures a pooled scheduler during creation.
type SchedulerOption func(*schedConfig)

// schedConfig holds internal configuration for scheduler creation.
type schedConfig struct {
	clock     clockz.Clock
	hooks     *Registry
	workers   int
	queueSize int
}

// WithClock sets the clock used for delayed scheduling.
// Default is clockz.RealClock; use clockz.FakeClock for deterministic
// testing.
func WithClock(clock clockz.Clock) SchedulerOption {
	return func(c *schedConfig) {
		c.clock = clock
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) SchedulerOption {
	return func(c *schedConfig) {
		c.workers = count
	}
}

// WithQueueSize sets the task queue size.
// Default is 0, which auto-calculates as workers * 2.
func WithQueueSize(size int) SchedulerOption {
	return func(c *schedConfig) {
		c.queueSize = size
	}
}

// WithRegistry sets the registry the scheduler consults for its
// scheduling hook and error path. Default is the process-wide registry.
func WithRegistry(r *Registry) SchedulerOption {
	return func(c *schedConfig) {
		c.hooks = r
	}
}

// ioWorkers bounds the I/O pool. The original runtime's I/O scheduler
// grows an unbounded thread cache; a wide fixed pool is the idiomatic
// bounded equivalent here.
const ioWorkers = 64

func buildConfig(workers int, opts []SchedulerOption) schedConfig {
	cfg := schedConfig{
		clock:   clockz.RealClock,
		hooks:   std,
		workers: workers,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	if cfg.queueSize == 0 {
		cfg.queueSize = cfg.workers * 2
	}
	return cfg
}

// NewComputationScheduler creates a pooled scheduler sized for
// CPU-bound work: one worker per logical CPU.
func NewComputationScheduler(opts ...SchedulerOption) Scheduler {
	return newPool(buildConfig(runtime.NumCPU(), opts))
}

// NewIOScheduler creates a pooled scheduler sized for I/O-bound work.
func NewIOScheduler(opts ...SchedulerOption) Scheduler {
	return newPool(buildConfig(ioWorkers, opts))
}

// NewSingleScheduler creates a scheduler backed by a single worker, so
// tasks run strictly one at a time in submission order.
func NewSingleScheduler(opts ...SchedulerOption) Scheduler {
	cfg := buildConfig(1, opts)
	cfg.workers = 1
	return newPool(cfg)
}

// standardSchedulers holds the lazily-built process-wide singletons.
// Reassigning the whole struct resets the sync.Once fields, which tests
// rely on for isolation.
type standardSchedulers struct {
	computeOnce sync.Once
	compute     Scheduler

	ioOnce sync.Once
	io     Scheduler

	singleOnce sync.Once
	single     Scheduler
}

var schedulers standardSchedulers

// Computation returns the process-wide computation scheduler.
//
// On first call the library default is built and routed through the
// init hook exactly once; the result is cached as the singleton. Every
// call, including the first, routes the singleton through the
// per-access hook, so an installed override sees each request.
func Computation() Scheduler {
	schedulers.computeOnce.Do(func() {
		schedulers.compute = std.InitComputationScheduler(NewComputationScheduler())
	})
	return std.OnComputationScheduler(schedulers.compute)
}

// IO returns the process-wide I/O scheduler. Construction and hook
// routing follow the same two-tier pattern as Computation.
func IO() Scheduler {
	schedulers.ioOnce.Do(func() {
		schedulers.io = std.InitIOScheduler(NewIOScheduler())
	})
	return std.OnIOScheduler(schedulers.io)
}

// Single returns the process-wide single-threaded scheduler.
// Construction and hook routing follow the same two-tier pattern as
// Computation.
func Single() Scheduler {
	schedulers.singleOnce.Do(func() {
		schedulers.single = std.InitSingleScheduler(NewSingleScheduler())
	})
	return std.OnSingleScheduler(schedulers.single)
}
