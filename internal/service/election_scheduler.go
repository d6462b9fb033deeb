package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ElectionScheduler runs partition-manager recoveries after a fixed delay.
// Every scheduled task fires exactly once unless Stop is called during shutdown.
type ElectionScheduler struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	nextID  uint64
	stopped bool
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewElectionScheduler creates a scheduler with the given delay
func NewElectionScheduler(delay time.Duration, logger *zap.Logger) *ElectionScheduler {
	return &ElectionScheduler{
		delay:  delay,
		timers: make(map[uint64]*time.Timer),
		logger: logger,
	}
}

// Delay returns the configured election duration
func (e *ElectionScheduler) Delay() time.Duration {
	return e.delay
}

// Schedule runs fn once after the delay without blocking the caller.
// It returns false if the scheduler has been stopped.
func (e *ElectionScheduler) Schedule(fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return false
	}

	id := e.nextID
	e.nextID++

	e.wg.Add(1)
	e.timers[id] = time.AfterFunc(e.delay, func() {
		defer e.wg.Done()

		e.mu.Lock()
		delete(e.timers, id)
		e.mu.Unlock()

		fn()
	})

	return true
}

// Pending returns the number of elections that have not fired yet
func (e *ElectionScheduler) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

// Wait blocks until every scheduled election has fired or been stopped
func (e *ElectionScheduler) Wait() {
	e.wg.Wait()
}

// Stop cancels pending elections and rejects new ones
func (e *ElectionScheduler) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	for id, t := range e.timers {
		if t.Stop() {
			e.wg.Done()
		}
		delete(e.timers, id)
	}

	e.logger.Info("Election scheduler stopped")
}
