package pluginz

// std is the process-wide registry behind the package-level functions.
// It lives for the entire process; the only way to clear it is Reset.
var std = New()

// Default returns the process-wide registry. Runtime components call
// the package-level wrappers below instead; Default exists for hosts
// that pass the registry around explicitly.
func Default() *Registry { return std }

// Lockdown permanently forbids further mutation of the process-wide
// registry. Idempotent; there is no public way back.
func Lockdown() { std.Lockdown() }

// IsLockdown reports whether the process-wide registry is locked down.
func IsLockdown() bool { return std.IsLockdown() }

// Reset clears every slot of the process-wide registry.
// Fails with ErrLockdown once locked.
func Reset() error { return std.Reset() }

// SetAssemblyHook installs the pipeline-assembly override.
func SetAssemblyHook(fn PipelineHook) error { return std.SetAssemblyHook(fn) }

// AssemblyHook returns the installed pipeline-assembly override, or nil.
func AssemblyHook() PipelineHook { return std.AssemblyHook() }

// OnAssembly routes a newly-constructed pipeline through the assembly
// hook of the process-wide registry.
func OnAssembly(p Pipeline) Pipeline { return std.OnAssembly(p) }

// SetSubscribeHook installs the subscription override.
func SetSubscribeHook(fn ObserverHook) error { return std.SetSubscribeHook(fn) }

// SubscribeHook returns the installed subscription override, or nil.
func SubscribeHook() ObserverHook { return std.SubscribeHook() }

// OnSubscribe routes a subscribing observer through the subscription
// hook of the process-wide registry.
func OnSubscribe(o Observer) Observer { return std.OnSubscribe(o) }

// SetScheduleHook installs the task-scheduling override.
func SetScheduleHook(fn TaskHook) error { return std.SetScheduleHook(fn) }

// ScheduleHook returns the installed task-scheduling override, or nil.
func ScheduleHook() TaskHook { return std.ScheduleHook() }

// OnSchedule routes a unit of work through the scheduling hook of the
// process-wide registry.
func OnSchedule(task Task) Task { return std.OnSchedule(task) }

// SetErrorHandler installs the undeliverable-error consumer.
func SetErrorHandler(fn ErrorHook) error { return std.SetErrorHandler(fn) }

// ErrorHandler returns the installed undeliverable-error consumer, or nil.
func ErrorHandler() ErrorHook { return std.ErrorHandler() }

// OnError reports an undeliverable error to the process-wide registry.
func OnError(err error) { std.OnError(err) }

// SetInitComputationSchedulerHook installs the computation-scheduler
// construction override.
func SetInitComputationSchedulerHook(fn SchedulerHook) error {
	return std.SetInitComputationSchedulerHook(fn)
}

// InitComputationSchedulerHook returns the installed override, or nil.
func InitComputationSchedulerHook() SchedulerHook { return std.InitComputationSchedulerHook() }

// SetComputationSchedulerHook installs the per-access computation
// scheduler override.
func SetComputationSchedulerHook(fn SchedulerHook) error {
	return std.SetComputationSchedulerHook(fn)
}

// ComputationSchedulerHook returns the installed override, or nil.
func ComputationSchedulerHook() SchedulerHook { return std.ComputationSchedulerHook() }

// SetInitIOSchedulerHook installs the I/O-scheduler construction
// override.
func SetInitIOSchedulerHook(fn SchedulerHook) error { return std.SetInitIOSchedulerHook(fn) }

// InitIOSchedulerHook returns the installed override, or nil.
func InitIOSchedulerHook() SchedulerHook { return std.InitIOSchedulerHook() }

// SetIOSchedulerHook installs the per-access I/O scheduler override.
func SetIOSchedulerHook(fn SchedulerHook) error { return std.SetIOSchedulerHook(fn) }

// IOSchedulerHook returns the installed override, or nil.
func IOSchedulerHook() SchedulerHook { return std.IOSchedulerHook() }

// SetInitSingleSchedulerHook installs the single-threaded-scheduler
// construction override.
func SetInitSingleSchedulerHook(fn SchedulerHook) error { return std.SetInitSingleSchedulerHook(fn) }

// InitSingleSchedulerHook returns the installed override, or nil.
func InitSingleSchedulerHook() SchedulerHook { return std.InitSingleSchedulerHook() }

// SetSingleSchedulerHook installs the per-access single-threaded
// scheduler override.
func SetSingleSchedulerHook(fn SchedulerHook) error { return std.SetSingleSchedulerHook(fn) }

// SingleSchedulerHook returns the installed override, or nil.
func SingleSchedulerHook() SchedulerHook { return std.SingleSchedulerHook() }
