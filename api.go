// Package pluginz is the extension-point registry for a reactive-stream
// runtime: a process-wide table of optional override functions ("hooks")
// that intercept specific lifecycle events without modifying the runtime
// internals.
//
// The covered events are pipeline assembly, observer subscription, task
// scheduling, construction of the three standard schedulers (computation,
// I/O, single-threaded), per-access scheduler redirection, and reporting of
// errors that could not be delivered to any observer.
//
// Basic Usage:
//
//	// Route every undeliverable error into the host's error tracker.
//	pluginz.SetErrorHandler(func(err error) {
//		tracker.Capture(err)
//	})
//
//	// Wrap every scheduled task with tracing.
//	pluginz.SetScheduleHook(func(task pluginz.Task) pluginz.Task {
//		return func() {
//			span := tracer.Start("task")
//			defer span.End()
//			task()
//		}
//	})
//
//	// Freeze configuration so loaded components cannot alter it.
//	pluginz.Lockdown()
//
// Scheduler Substitution:
//
// The scheduler hooks are two-tiered. The Init* hooks run exactly once, when
// the corresponding standard scheduler singleton is first constructed, and
// let a host replace the underlying implementation entirely (for example
// with a deterministic test scheduler). The per-access hooks run on every
// later request and redirect callers without touching the singleton:
//
//	// Replace the singleton itself, once.
//	pluginz.SetInitComputationSchedulerHook(func(s pluginz.Scheduler) pluginz.Scheduler {
//		return testScheduler
//	})
//
//	// Redirect every I/O request onto the computation scheduler.
//	pluginz.SetIOSchedulerHook(func(pluginz.Scheduler) pluginz.Scheduler {
//		return pluginz.Computation()
//	})
//
// Embedding:
//
// Hosts that need an isolated registry (rather than the process-wide
// default) construct their own:
//
//	reg := pluginz.New(pluginz.WithLogger(logger))
//	sched := pluginz.NewIOScheduler(pluginz.WithRegistry(reg))
//
// Thread Safety:
//
// Every slot behaves as an independently atomic reference: reads never
// block, concurrent writes to the same slot are last-write-wins, and a
// completed write is visible to all subsequent reads on any goroutine. No
// registry operation blocks or spawns goroutines; invocation wrappers run
// the installed override synchronously on the calling goroutine.
package pluginz

// Task is a unit of work handed to a scheduler.
type Task func()

// Observer receives the events of a stream pipeline. It stands in for the
// runtime's subscriber types; the registry never calls its methods, it only
// passes observers through the subscription hook.
type Observer interface {
	OnNext(v any)
	OnError(err error)
	OnComplete()
}

// Pipeline is a stream pipeline about to be exposed to callers. Like
// Observer it is a collaborator contract: the registry only routes pipelines
// through the assembly hook.
type Pipeline interface {
	Subscribe(o Observer)
}

// PipelineHook intercepts pipeline assembly. It receives the pipeline about
// to be exposed and returns the pipeline to expose instead.
type PipelineHook func(p Pipeline) Pipeline

// ObserverHook intercepts subscription. It receives the observer about to
// receive events and returns the (possibly wrapping) observer to use.
type ObserverHook func(o Observer) Observer

// TaskHook intercepts task scheduling. It receives the unit of work handed
// to a scheduler and returns the (possibly wrapping) unit of work to run.
type TaskHook func(task Task) Task

// SchedulerHook intercepts scheduler construction or access. Init slots
// receive the library default at first construction; per-access slots
// receive the installed singleton on every request.
type SchedulerHook func(s Scheduler) Scheduler

// ErrorHook consumes an undeliverable error. It is the terminal sink for
// errors the runtime could not hand to any observer; see Registry.OnError
// for its containment contract.
type ErrorHook func(err error)
