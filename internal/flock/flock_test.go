package flock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLock_Serializes(t *testing.T) {
	marker := filepath.Join(t.TempDir(), ".write_lock")
	l := New(marker, 5*time.Millisecond, 2*time.Second)

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "locked sections must never overlap")

	// Marker must be gone once every caller has finished.
	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err), "marker should be removed after release")
}

func TestAcquire_TimesOutOnStaleMarker(t *testing.T) {
	marker := filepath.Join(t.TempDir(), ".write_lock")
	require.NoError(t, os.WriteFile(marker, nil, 0o644))

	l := New(marker, 5*time.Millisecond, 50*time.Millisecond)
	err := l.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAcquire_ContextCancel(t *testing.T) {
	marker := filepath.Join(t.TempDir(), ".write_lock")
	require.NoError(t, os.WriteFile(marker, nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(marker, 5*time.Millisecond, time.Minute)
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelease_IgnoresMissingMarker(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "gone"), 0, 0)
	l.Release() // must not panic or complain
}
