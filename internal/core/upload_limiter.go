package core

// upload_limiter.go bounds the number of distribution runs in flight.
//
// Runs beyond the limit wait up to maxWait for a slot before failing with
// ErrTooManyUploads. WaitForDrain lets shutdown block until every active
// run has released its slot.

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyUploads is returned when no slot frees up within the wait time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxConcurrentUploads is used when a non-positive limit is given.
const DefaultMaxConcurrentUploads = 5

// DefaultMaxWaitTime is used when a non-positive wait is given.
const DefaultMaxWaitTime = 30 * time.Second

// UploadLimiter is a weighted semaphore with a bounded wait.
type UploadLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	drained chan struct{} // closed while active == 0
}

// NewUploadLimiter allows at most maxConcurrent simultaneous runs.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	drained := make(chan struct{})
	close(drained)

	return &UploadLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
		drained: drained,
	}
}

// Acquire blocks until a slot is free, maxWait elapses or ctx is done.
// Every successful Acquire must be paired with one Release.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUploads
	}

	l.track(1)
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (l *UploadLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.track(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *UploadLimiter) Release() {
	l.track(-1)
	l.sem.Release(1)
}

func (l *UploadLimiter) track(delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == 0 && delta > 0 {
		l.drained = make(chan struct{})
	}
	l.active += delta
	if l.active == 0 {
		close(l.drained)
	}
}

// ActiveCount returns the number of runs holding a slot.
func (l *UploadLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// MaxConcurrent returns the configured limit.
func (l *UploadLimiter) MaxConcurrent() int {
	return l.max
}

// Available returns the number of free slots.
func (l *UploadLimiter) Available() int {
	return l.max - l.ActiveCount()
}

// WaitForDrain blocks until no run holds a slot or ctx is done.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	drained := l.drained
	l.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UploadLimiterStatus is a point-in-time snapshot of the limiter.
type UploadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for health reporting.
func (l *UploadLimiter) Status() UploadLimiterStatus {
	active := l.ActiveCount()
	return UploadLimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
