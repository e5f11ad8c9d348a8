// Package flock serializes workbook rewrites with a sentinel file. The
// marker is created with O_EXCL so two processes can never both observe
// absence and both proceed, and acquisition is bounded by a timeout so a
// stale marker from a crashed writer cannot block forever.
package flock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired in time.
var ErrTimeout = errors.New("flock: timed out waiting for lock")

// Lock guards a file path with a sentinel marker.
type Lock struct {
	path    string
	poll    time.Duration
	timeout time.Duration
}

// New creates a lock around the marker at path. Non-positive poll or timeout
// values fall back to 50ms and 10s.
func New(path string, poll, timeout time.Duration) *Lock {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Lock{path: path, poll: poll, timeout: timeout}
}

// Acquire creates the marker file, polling until the current holder releases
// it. It fails with ErrTimeout once the configured timeout elapses and with
// the context error if ctx is cancelled first.
func (l *Lock) Acquire(ctx context.Context) error {
	deadline := time.Now().Add(l.timeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("flock: create marker %s: %w", l.path, err)
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

// Release removes the marker. A missing marker is not an error: the marker
// exists only for mutual exclusion, not durability.
func (l *Lock) Release() {
	_ = os.Remove(l.path)
}

// WithLock runs fn with the lock held, releasing it on every exit path.
func (l *Lock) WithLock(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
