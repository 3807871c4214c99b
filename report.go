package pluginz

import (
	"fmt"
	"sync/atomic"
)

// UndeliverableError is surfaced when the installed error handler itself
// failed while consuming an undeliverable error. Err is the original
// error; Handler is the failure raised by the handler, attached as a
// secondary cause rather than propagated to the reporting caller.
type UndeliverableError struct {
	Err     error
	Handler error
}

func (e *UndeliverableError) Error() string {
	return fmt.Sprintf("%v (error handler failed: %v)", e.Err, e.Handler)
}

// Unwrap exposes both the original error and the handler's failure to
// errors.Is and errors.As.
func (e *UndeliverableError) Unwrap() []error {
	return []error{e.Err, e.Handler}
}

// OnError reports an error that could not be delivered to any observer.
//
// With no handler installed the error is surfaced on the registry's
// default channel. With a handler installed the handler consumes it; if
// the handler itself fails, the failure is attached to the original error
// as a secondary cause and the pair is surfaced on the default channel.
//
// A nil err is replaced by ErrNilError before any of the above.
//
// OnError is the terminal sink for errors the runtime could not deliver
// anywhere else. It never panics and never blocks beyond the handler's
// own execution.
func (r *Registry) OnError(err error) {
	atomic.AddInt64(&r.metrics.ErrorsReported, 1)

	if err == nil {
		err = ErrNilError
	}

	if h := r.onError.Load(); h != nil {
		failure := contain(*h, err)
		if failure == nil {
			// Handler consumed the error.
			return
		}
		atomic.AddInt64(&r.metrics.HandlerFailures, 1)
		err = &UndeliverableError{Err: err, Handler: failure}
	}

	atomic.AddInt64(&r.metrics.ErrorsSurfaced, 1)
	r.log.Error().Err(err).Msg("undeliverable error")
}

// contain runs the handler and converts a panic into a returned error.
func contain(h ErrorHook, err error) (failure error) {
	defer func() {
		if rec := recover(); rec != nil {
			failure = panicError(rec)
		}
	}()
	h(err)
	return nil
}

// panicError converts a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
