package pluginz

import "errors"

// Configuration Errors
//
// These errors are returned by slot-mutating operations based on the
// state of the lockdown gate.

// ErrLockdown is returned by every setter and by Reset once Lockdown()
// has been called. The rejected operation leaves all slots unchanged.
//
// Misconfiguration after lockdown is a loud, immediate failure at the
// call site, never a silent no-op: callers must be able to detect a
// rejected reconfiguration attempt.
var ErrLockdown = errors.New("plugins can't be changed anymore")

// Error-Reporting Errors
//
// These errors are synthesized by the undeliverable-error path.

// ErrNilError is surfaced in place of the original error when OnError is
// called with nil. Reporting "nothing" is itself a bug worth surfacing,
// so a concrete error is substituted rather than propagating ambiguity.
var ErrNilError = errors.New("OnError called with a nil error")

// Scheduler Errors
//
// These errors are returned by the pooled scheduler implementations.

// ErrNilTask is returned when a nil task is handed to a scheduler.
var ErrNilTask = errors.New("scheduler received a nil task")

// ErrQueueFull is returned when a scheduler's task queue cannot accept
// more work. The task is rejected and never executed.
var ErrQueueFull = errors.New("scheduler queue is full")

// ErrSchedulerClosed is returned when scheduling work on a scheduler
// that has been closed via Close().
var ErrSchedulerClosed = errors.New("scheduler is closed")

// ErrAlreadyClosed is returned when calling Close() on a scheduler that
// has already been closed. This prevents double-cleanup.
var ErrAlreadyClosed = errors.New("scheduler already closed")
