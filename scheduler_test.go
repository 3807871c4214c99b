package pluginz

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobalState restores the process-wide registry and scheduler
// singletons between cases.
func resetGlobalState(t *testing.T) {
	t.Helper()

	closeStandard := func() {
		if schedulers.compute != nil {
			_ = schedulers.compute.Close()
		}
		if schedulers.io != nil {
			_ = schedulers.io.Close()
		}
		if schedulers.single != nil {
			_ = schedulers.single.Close()
		}
	}

	std.unlock()
	require.NoError(t, std.Reset())
	closeStandard()
	schedulers = standardSchedulers{}

	t.Cleanup(func() {
		std.unlock()
		_ = std.Reset()
		closeStandard()
		schedulers = standardSchedulers{}
	})
}

func TestPoolExecutesTasks(t *testing.T) {
	s := NewComputationScheduler(WithRegistry(New()))
	defer s.Close()

	done := make(chan struct{})
	require.NoError(t, s.Schedule(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestSingleSchedulerRunsInOrder(t *testing.T) {
	s := NewSingleScheduler(WithRegistry(New()), WithQueueSize(16))
	defer s.Close()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, s.Schedule(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks were not executed within timeout")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPoolAppliesScheduleHook(t *testing.T) {
	reg := New()
	var wrapped atomic.Int64
	require.NoError(t, reg.SetScheduleHook(func(task Task) Task {
		return func() {
			wrapped.Add(1)
			task()
		}
	}))

	s := NewSingleScheduler(WithRegistry(reg))
	defer s.Close()

	done := make(chan struct{})
	require.NoError(t, s.Schedule(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not executed within timeout")
	}
	assert.Equal(t, int64(1), wrapped.Load())
}

func TestPoolReportsTaskPanic(t *testing.T) {
	reg := New()
	caught := make(chan error, 1)
	require.NoError(t, reg.SetErrorHandler(func(err error) { caught <- err }))

	s := NewSingleScheduler(WithRegistry(reg))
	defer s.Close()

	boom := errors.New("task blew up")
	require.NoError(t, s.Schedule(func() { panic(boom) }))

	select {
	case err := <-caught:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("panic was not reported within timeout")
	}

	// The worker survives the panic.
	done := make(chan struct{})
	require.NoError(t, s.Schedule(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive the panic")
	}

	assert.Equal(t, int64(1), s.Metrics().TasksFailed)
}

func TestScheduleAfter(t *testing.T) {
	t.Run("runs after the delay", func(t *testing.T) {
		s := NewSingleScheduler(WithRegistry(New()))
		defer s.Close()

		done := make(chan struct{})
		start := time.Now()
		require.NoError(t, s.ScheduleAfter(func() { close(done) }, 20*time.Millisecond))

		select {
		case <-done:
			assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		case <-time.After(time.Second):
			t.Fatal("delayed task was not executed within timeout")
		}
	})

	t.Run("non-positive delay schedules immediately", func(t *testing.T) {
		s := NewSingleScheduler(WithRegistry(New()))
		defer s.Close()

		done := make(chan struct{})
		require.NoError(t, s.ScheduleAfter(func() { close(done) }, 0))
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task was not executed within timeout")
		}
	})

	t.Run("drop after close is reported as undeliverable", func(t *testing.T) {
		reg := New()
		caught := make(chan error, 1)
		require.NoError(t, reg.SetErrorHandler(func(err error) { caught <- err }))

		s := NewSingleScheduler(WithRegistry(reg))
		require.NoError(t, s.ScheduleAfter(func() {}, 20*time.Millisecond))
		require.NoError(t, s.Close())

		select {
		case err := <-caught:
			assert.ErrorIs(t, err, ErrSchedulerClosed)
		case <-time.After(time.Second):
			t.Fatal("dropped delayed task was not reported")
		}
	})
}

func TestSchedulerErrors(t *testing.T) {
	t.Run("nil task", func(t *testing.T) {
		s := NewSingleScheduler(WithRegistry(New()))
		defer s.Close()

		assert.ErrorIs(t, s.Schedule(nil), ErrNilTask)
		assert.ErrorIs(t, s.ScheduleAfter(nil, time.Millisecond), ErrNilTask)
	})

	t.Run("queue full", func(t *testing.T) {
		s := NewSingleScheduler(WithRegistry(New()), WithQueueSize(1))
		defer s.Close()

		block := make(chan struct{})
		// Occupy the only worker, then fill the queue.
		require.NoError(t, s.Schedule(func() { <-block }))

		var errFull error
		for i := 0; i < 10; i++ {
			if errFull = s.Schedule(func() {}); errFull != nil {
				break
			}
		}
		close(block)

		assert.ErrorIs(t, errFull, ErrQueueFull)
		assert.GreaterOrEqual(t, s.Metrics().TasksRejected, int64(1))
	})

	t.Run("closed scheduler", func(t *testing.T) {
		s := NewSingleScheduler(WithRegistry(New()))
		require.NoError(t, s.Close())

		assert.ErrorIs(t, s.Schedule(func() {}), ErrSchedulerClosed)
		assert.ErrorIs(t, s.ScheduleAfter(func() {}, time.Millisecond), ErrSchedulerClosed)
		assert.ErrorIs(t, s.Close(), ErrAlreadyClosed)
	})
}

func TestCloseDrainsQueuedTasks(t *testing.T) {
	s := NewSingleScheduler(WithRegistry(New()), WithQueueSize(8))

	var ran atomic.Int64
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Schedule(func() { ran.Add(1) }))
	}

	require.NoError(t, s.Close())
	assert.Equal(t, int64(5), ran.Load())
}

func TestSchedulerMetrics(t *testing.T) {
	s := NewSingleScheduler(WithRegistry(New()), WithQueueSize(4))

	done := make(chan struct{})
	require.NoError(t, s.Schedule(func() {}))
	require.NoError(t, s.Schedule(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks were not executed within timeout")
	}
	require.NoError(t, s.Close())

	m := s.Metrics()
	assert.Equal(t, int64(4), m.QueueCapacity)
	assert.Equal(t, int64(2), m.TasksScheduled)
	assert.Equal(t, int64(2), m.TasksProcessed)
	assert.Equal(t, int64(0), m.TasksFailed)
}

func TestStandardSchedulerInitHookRunsOnce(t *testing.T) {
	resetGlobalState(t)

	var initCalls atomic.Int64
	replacement := &stubScheduler{name: "replacement"}
	require.NoError(t, SetInitComputationSchedulerHook(func(def Scheduler) Scheduler {
		initCalls.Add(1)
		// The library default is handed in fully constructed; release it.
		require.NoError(t, def.Close())
		return replacement
	}))

	for i := 0; i < 3; i++ {
		assert.Same(t, replacement, Computation())
	}
	assert.Equal(t, int64(1), initCalls.Load(), "init hook must run exactly once")
}

// End-to-end scenario: a per-access override returns a fixed test
// scheduler without the init hook or the library default being involved.
func TestStandardSchedulerOverridePerAccess(t *testing.T) {
	resetGlobalState(t)

	fixed := &stubScheduler{name: "fixed"}
	var overrideCalls atomic.Int64
	require.NoError(t, SetComputationSchedulerHook(func(Scheduler) Scheduler {
		overrideCalls.Add(1)
		return fixed
	}))

	for i := 0; i < 3; i++ {
		assert.Same(t, fixed, Computation())
	}
	assert.Equal(t, int64(3), overrideCalls.Load(), "per-access hook must run on every request")
	assert.Nil(t, InitComputationSchedulerHook(), "init slot stays untouched")
}

func TestStandardSchedulersAreDistinctSingletons(t *testing.T) {
	resetGlobalState(t)

	c, i, s := Computation(), IO(), Single()
	require.NotNil(t, c)
	require.NotNil(t, i)
	require.NotNil(t, s)

	assert.NotSame(t, c, i)
	assert.NotSame(t, i, s)

	// Unhooked accessors hand back the cached singleton every time.
	assert.Same(t, c, Computation())
	assert.Same(t, i, IO())
	assert.Same(t, s, Single())
}

func TestIOAndSingleInitHooks(t *testing.T) {
	resetGlobalState(t)

	ioRepl := &stubScheduler{name: "io"}
	singleRepl := &stubScheduler{name: "single"}
	require.NoError(t, SetInitIOSchedulerHook(func(def Scheduler) Scheduler {
		require.NoError(t, def.Close())
		return ioRepl
	}))
	require.NoError(t, SetInitSingleSchedulerHook(func(def Scheduler) Scheduler {
		require.NoError(t, def.Close())
		return singleRepl
	}))

	assert.Same(t, ioRepl, IO())
	assert.Same(t, singleRepl, Single())
}
