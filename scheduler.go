package reporter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// RunScheduler decides when report runs happen.
type RunScheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(func() error)
	WaitForShutdown(ctx context.Context) error
	Stopped() bool
}

// DefaultRunScheduler drives the registered callback on a fixed
// interval, or exactly once in run-once mode. The first run always
// executes synchronously inside Start so its error can decide the
// process exit; later runs only log their failures.
type DefaultRunScheduler struct {
	interval time.Duration
	runOnce  bool
	logger   log.Logger
	callback func() error

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewDefaultRunScheduler creates a scheduler; callers register a
// callback before starting it.
func NewDefaultRunScheduler(interval time.Duration, runOnce bool, logger log.Logger) *DefaultRunScheduler {
	return &DefaultRunScheduler{
		interval: interval,
		runOnce:  runOnce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// RegisterCallback sets the function invoked for each report run.
func (s *DefaultRunScheduler) RegisterCallback(callback func() error) {
	s.callback = callback
}

// Start executes the first run and, in continuous mode, spawns the
// interval loop. The first run's error is returned as-is in both
// modes.
func (s *DefaultRunScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("no run callback registered")
	}

	s.done = make(chan struct{})
	s.running.Store(true)

	mode := "continuous"
	if s.runOnce {
		mode = "run-once"
	}
	s.logger.Info("Starting run scheduler", "mode", mode, "interval", s.interval)

	if err := s.callback(); err != nil {
		return err
	}
	if s.runOnce {
		return nil
	}

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// loop re-runs the callback every interval until Stop or context
// cancellation.
func (s *DefaultRunScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.running.Load() {
				return
			}
			s.logger.Info("Running periodic report")
			if err := s.callback(); err != nil {
				s.logger.Error("Error running periodic report", "error", err)
			}
		case <-s.done:
			s.logger.Debug("Run scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Debug("Run scheduler context canceled")
			s.running.Store(false)
			return
		}
	}
}

// Stop signals the loop to exit. It is idempotent and safe on a
// scheduler that never started.
func (s *DefaultRunScheduler) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		s.logger.Debug("Stop called on idle scheduler")
		return nil
	}
	close(s.done)
	return nil
}

// Stopped reports whether the scheduler is not running.
func (s *DefaultRunScheduler) Stopped() bool {
	return !s.running.Load()
}

// WaitForShutdown blocks until the interval loop has wound down or ctx
// expires.
func (s *DefaultRunScheduler) WaitForShutdown(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for scheduler to wind down", "error", ctx.Err())
		return ctx.Err()
	}
}
