package pluginz

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Option configures a Registry during creation.
type Option func(*config)

// config holds internal configuration for registry creation.
type config struct {
	log zerolog.Logger
}

// WithLogger sets the logger used as the default undeliverable-error
// channel. Default is a zerolog logger writing to stderr.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Registry is a table of optional override functions, one slot per
// lifecycle event of the surrounding runtime. All slots start absent;
// an absent slot makes its invocation wrapper a pure passthrough, so a
// runtime wired through an empty registry behaves exactly as if the
// registry did not exist.
//
// Each slot is an independently atomic cell. There is no cross-slot
// transaction: concurrent setters to different slots do not serialize,
// and concurrent setters to the same slot are last-write-wins.
//
// A slot holds at most one override. Installing a new override replaces
// the previous one; there is no chaining.
type Registry struct {
	log zerolog.Logger

	locked atomic.Bool

	onError     atomic.Pointer[ErrorHook]
	onAssembly  atomic.Pointer[PipelineHook]
	onSubscribe atomic.Pointer[ObserverHook]
	onSchedule  atomic.Pointer[TaskHook]

	onInitComputation atomic.Pointer[SchedulerHook]
	onInitIO          atomic.Pointer[SchedulerHook]
	onInitSingle      atomic.Pointer[SchedulerHook]
	onComputation     atomic.Pointer[SchedulerHook]
	onIO              atomic.Pointer[SchedulerHook]
	onSingle          atomic.Pointer[SchedulerHook]

	// Metrics field - zero initialization provides safe defaults
	metrics Metrics
}

// New creates a registry with every slot absent and the gate open.
//
// Most callers use the process-wide default registry through the
// package-level functions instead; New exists for hosts and tests that
// need isolated registries.
func New(opts ...Option) *Registry {
	cfg := config{
		log: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{log: cfg.log}
}

// Lockdown permanently forbids further slot mutation on this registry.
// It is idempotent and always succeeds; there is no public way back.
//
// A container or host process calls this once during start-up, after
// installing its desired hooks, so that later-loaded components cannot
// silently alter runtime-wide behavior such as error routing.
func (r *Registry) Lockdown() {
	r.locked.Store(true)
}

// IsLockdown reports whether the registry has been locked down.
func (r *Registry) IsLockdown() bool {
	return r.locked.Load()
}

// unlock reopens the gate. It exists solely so automated tests can
// restore isolation between cases and is never exposed to production
// callers.
func (r *Registry) unlock() {
	r.locked.Store(false)
}

// setSlot is the shared setter path: check the gate, then publish.
//
// A setter racing Lockdown may win or lose, but the slot is a single
// atomic cell so it is never left partially written.
func setSlot[T any](r *Registry, slot *atomic.Pointer[T], fn *T) error {
	if r.locked.Load() {
		atomic.AddInt64(&r.metrics.MutationsRejected, 1)
		return ErrLockdown
	}
	slot.Store(fn)
	return nil
}

// loadSlot returns the installed override, or the zero value if absent.
func loadSlot[T any](slot *atomic.Pointer[T]) T {
	if p := slot.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// SetAssemblyHook installs fn as the pipeline-assembly override.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetAssemblyHook(fn PipelineHook) error {
	if fn == nil {
		return setSlot(r, &r.onAssembly, nil)
	}
	return setSlot(r, &r.onAssembly, &fn)
}

// AssemblyHook returns the installed pipeline-assembly override, or nil.
func (r *Registry) AssemblyHook() PipelineHook {
	return loadSlot(&r.onAssembly)
}

// OnAssembly is called by the runtime when a new pipeline is constructed.
// It returns the pipeline the runtime should expose: the input unchanged
// when no hook is installed, otherwise whatever the hook returns. The
// result is not validated; a hook returning a broken pipeline is the hook
// author's problem, and a panicking hook propagates to the caller.
func (r *Registry) OnAssembly(p Pipeline) Pipeline {
	if fn := r.onAssembly.Load(); fn != nil {
		return (*fn)(p)
	}
	return p
}

// SetSubscribeHook installs fn as the subscription override.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetSubscribeHook(fn ObserverHook) error {
	if fn == nil {
		return setSlot(r, &r.onSubscribe, nil)
	}
	return setSlot(r, &r.onSubscribe, &fn)
}

// SubscribeHook returns the installed subscription override, or nil.
func (r *Registry) SubscribeHook() ObserverHook {
	return loadSlot(&r.onSubscribe)
}

// OnSubscribe is called by the runtime when an observer subscribes.
// It returns the observer the pipeline should deliver events to.
func (r *Registry) OnSubscribe(o Observer) Observer {
	if fn := r.onSubscribe.Load(); fn != nil {
		return (*fn)(o)
	}
	return o
}

// SetScheduleHook installs fn as the task-scheduling override.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetScheduleHook(fn TaskHook) error {
	if fn == nil {
		return setSlot(r, &r.onSchedule, nil)
	}
	return setSlot(r, &r.onSchedule, &fn)
}

// ScheduleHook returns the installed task-scheduling override, or nil.
func (r *Registry) ScheduleHook() TaskHook {
	return loadSlot(&r.onSchedule)
}

// OnSchedule is called when a unit of work is handed to a scheduler.
// It returns the task the scheduler should actually run.
func (r *Registry) OnSchedule(task Task) Task {
	if fn := r.onSchedule.Load(); fn != nil {
		return (*fn)(task)
	}
	return task
}

// SetErrorHandler installs fn as the undeliverable-error consumer.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetErrorHandler(fn ErrorHook) error {
	if fn == nil {
		return setSlot(r, &r.onError, nil)
	}
	return setSlot(r, &r.onError, &fn)
}

// ErrorHandler returns the installed undeliverable-error consumer, or nil.
func (r *Registry) ErrorHandler() ErrorHook {
	return loadSlot(&r.onError)
}

// SetInitComputationSchedulerHook installs fn on the slot consulted once,
// when the computation scheduler singleton is first constructed.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetInitComputationSchedulerHook(fn SchedulerHook) error {
	if fn == nil {
		return setSlot(r, &r.onInitComputation, nil)
	}
	return setSlot(r, &r.onInitComputation, &fn)
}

// InitComputationSchedulerHook returns the installed override, or nil.
func (r *Registry) InitComputationSchedulerHook() SchedulerHook {
	return loadSlot(&r.onInitComputation)
}

// InitComputationScheduler is called exactly once, at first construction
// of the computation scheduler singleton. It receives the library default
// and returns the scheduler to install as the singleton.
func (r *Registry) InitComputationScheduler(def Scheduler) Scheduler {
	if fn := r.onInitComputation.Load(); fn != nil {
		return (*fn)(def)
	}
	return def
}

// SetComputationSchedulerHook installs fn on the slot consulted on every
// request for the computation scheduler.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetComputationSchedulerHook(fn SchedulerHook) error {
	if fn == nil {
		return setSlot(r, &r.onComputation, nil)
	}
	return setSlot(r, &r.onComputation, &fn)
}

// ComputationSchedulerHook returns the installed override, or nil.
func (r *Registry) ComputationSchedulerHook() SchedulerHook {
	return loadSlot(&r.onComputation)
}

// OnComputationScheduler is called on every request for the computation
// scheduler. It receives the installed singleton and returns the
// scheduler to hand back for this call.
func (r *Registry) OnComputationScheduler(s Scheduler) Scheduler {
	if fn := r.onComputation.Load(); fn != nil {
		return (*fn)(s)
	}
	return s
}

// SetInitIOSchedulerHook installs fn on the slot consulted once, when the
// I/O scheduler singleton is first constructed.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetInitIOSchedulerHook(fn SchedulerHook) error {
	if fn == nil {
		return setSlot(r, &r.onInitIO, nil)
	}
	return setSlot(r, &r.onInitIO, &fn)
}

// InitIOSchedulerHook returns the installed override, or nil.
func (r *Registry) InitIOSchedulerHook() SchedulerHook {
	return loadSlot(&r.onInitIO)
}

// InitIOScheduler is called exactly once, at first construction of the
// I/O scheduler singleton.
func (r *Registry) InitIOScheduler(def Scheduler) Scheduler {
	if fn := r.onInitIO.Load(); fn != nil {
		return (*fn)(def)
	}
	return def
}

// SetIOSchedulerHook installs fn on the slot consulted on every request
// for the I/O scheduler.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetIOSchedulerHook(fn SchedulerHook) error {
	if fn == nil {
		return setSlot(r, &r.onIO, nil)
	}
	return setSlot(r, &r.onIO, &fn)
}

// IOSchedulerHook returns the installed override, or nil.
func (r *Registry) IOSchedulerHook() SchedulerHook {
	return loadSlot(&r.onIO)
}

// OnIOScheduler is called on every request for the I/O scheduler.
func (r *Registry) OnIOScheduler(s Scheduler) Scheduler {
	if fn := r.onIO.Load(); fn != nil {
		return (*fn)(s)
	}
	return s
}

// SetInitSingleSchedulerHook installs fn on the slot consulted once, when
// the single-threaded scheduler singleton is first constructed.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetInitSingleSchedulerHook(fn SchedulerHook) error {
	if fn == nil {
		return setSlot(r, &r.onInitSingle, nil)
	}
	return setSlot(r, &r.onInitSingle, &fn)
}

// InitSingleSchedulerHook returns the installed override, or nil.
func (r *Registry) InitSingleSchedulerHook() SchedulerHook {
	return loadSlot(&r.onInitSingle)
}

// InitSingleScheduler is called exactly once, at first construction of
// the single-threaded scheduler singleton.
func (r *Registry) InitSingleScheduler(def Scheduler) Scheduler {
	if fn := r.onInitSingle.Load(); fn != nil {
		return (*fn)(def)
	}
	return def
}

// SetSingleSchedulerHook installs fn on the slot consulted on every
// request for the single-threaded scheduler.
// A nil fn clears the slot. Fails with ErrLockdown once locked.
func (r *Registry) SetSingleSchedulerHook(fn SchedulerHook) error {
	if fn == nil {
		return setSlot(r, &r.onSingle, nil)
	}
	return setSlot(r, &r.onSingle, &fn)
}

// SingleSchedulerHook returns the installed override, or nil.
func (r *Registry) SingleSchedulerHook() SchedulerHook {
	return loadSlot(&r.onSingle)
}

// OnSingleScheduler is called on every request for the single-threaded
// scheduler.
func (r *Registry) OnSingleScheduler(s Scheduler) Scheduler {
	if fn := r.onSingle.Load(); fn != nil {
		return (*fn)(s)
	}
	return s
}

// Reset clears every slot back to absent, restoring default passthrough
// behavior. Reset is itself a mutation of every slot, so it fails with
// ErrLockdown, changing nothing, once the registry is locked down.
func (r *Registry) Reset() error {
	if r.locked.Load() {
		atomic.AddInt64(&r.metrics.MutationsRejected, 1)
		return ErrLockdown
	}

	r.onError.Store(nil)
	r.onAssembly.Store(nil)
	r.onSubscribe.Store(nil)
	r.onSchedule.Store(nil)

	r.onInitComputation.Store(nil)
	r.onInitIO.Store(nil)
	r.onInitSingle.Store(nil)
	r.onComputation.Store(nil)
	r.onIO.Store(nil)
	r.onSingle.Store(nil)

	return nil
}

// Metrics returns a snapshot of the registry's counters. All values are
// read atomically.
func (r *Registry) Metrics() Metrics {
	return r.metrics.snapshot()
}
