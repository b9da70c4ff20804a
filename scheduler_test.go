package reporter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(interval time.Duration, runOnce bool) *DefaultRunScheduler {
	return NewDefaultRunScheduler(interval, runOnce, log.New())
}

func TestRunSchedulerRunOnce(t *testing.T) {
	scheduler := newTestScheduler(20*time.Millisecond, true)

	var calls atomic.Int32
	scheduler.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, scheduler.Start(ctx))
	assert.Equal(t, int32(1), calls.Load(), "run-once should fire the callback exactly once")

	// Several intervals later the count must not have moved.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "run-once must not schedule further runs")
}

func TestRunSchedulerPeriodic(t *testing.T) {
	scheduler := newTestScheduler(25*time.Millisecond, false)

	ran := make(chan struct{}, 16)
	scheduler.RegisterCallback(func() error {
		ran <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, scheduler.Start(ctx))

	// One immediate run plus three interval ticks.
	for i := 0; i < 4; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for run %d of 4", i+1)
		}
	}

	require.NoError(t, scheduler.Stop())
	assert.True(t, scheduler.Stopped())

	select {
	case <-ran:
		t.Fatal("callback ran after Stop")
	case <-time.After(80 * time.Millisecond):
	}

	assert.NoError(t, scheduler.WaitForShutdown(ctx))
}

func TestRunSchedulerFirstRunError(t *testing.T) {
	wantErr := errors.New("report run failed")

	// Continuous mode still surfaces the first run's error from Start.
	scheduler := newTestScheduler(20*time.Millisecond, false)
	scheduler.RegisterCallback(func() error {
		return wantErr
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	require.Error(t, err)
	assert.Equal(t, wantErr, err)

	// Run-once mode returns it too.
	once := newTestScheduler(20*time.Millisecond, true)
	once.RegisterCallback(func() error {
		return wantErr
	})
	assert.Equal(t, wantErr, once.Start(ctx))
}

func TestRunSchedulerRequiresCallback(t *testing.T) {
	scheduler := newTestScheduler(20*time.Millisecond, true)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run callback registered")
}

func TestRunSchedulerStopIdempotent(t *testing.T) {
	scheduler := newTestScheduler(20*time.Millisecond, true)
	scheduler.RegisterCallback(func() error { return nil })

	// Stopping a scheduler that never started is a no-op.
	assert.NoError(t, scheduler.Stop())
	assert.NoError(t, scheduler.Stop())
	assert.True(t, scheduler.Stopped())

	// After a run-once Start, repeated stops stay safe.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, scheduler.Start(ctx))
	assert.NoError(t, scheduler.Stop())
	assert.NoError(t, scheduler.Stop())
}

func TestRunSchedulerWaitForShutdown(t *testing.T) {
	scheduler := newTestScheduler(20*time.Millisecond, false)
	scheduler.RegisterCallback(func() error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, scheduler.Start(ctx))
	require.NoError(t, scheduler.Stop())

	assert.NoError(t, scheduler.WaitForShutdown(ctx), "wait should return once the loop exits")
}

func TestRunSchedulerWaitForShutdownExpires(t *testing.T) {
	scheduler := newTestScheduler(time.Hour, false)
	scheduler.RegisterCallback(func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, scheduler.Start(ctx))

	expired, expire := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer expire()

	err := scheduler.WaitForShutdown(expired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, scheduler.Stop())
	assert.NoError(t, scheduler.WaitForShutdown(context.Background()))
}
