package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		capacity int
		wantErr  bool
	}{
		{name: "valid", rate: 10.0, capacity: 10},
		{name: "zero rate", rate: 0, capacity: 10, wantErr: true},
		{name: "negative rate", rate: -1, capacity: 10, wantErr: true},
		{name: "zero capacity", rate: 10.0, capacity: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.rate, tt.capacity)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, b.Capacity())
			assert.InDelta(t, float64(tt.capacity), b.Available(), 0.001)
		})
	}
}

func TestAcquireReducesTokens(t *testing.T) {
	b, err := New(10.0, 10)
	require.NoError(t, err)

	require.NoError(t, b.AcquireN(context.Background(), 5))

	// A tiny refill happens between acquire and the check; allow for it.
	assert.InDelta(t, 5.0, b.Available(), 0.5)
}

func TestAcquireWaitsForRefill(t *testing.T) {
	// 20 tokens/s means an empty bucket yields one token after 50ms.
	b, err := New(20.0, 2)
	require.NoError(t, err)

	require.NoError(t, b.AcquireN(context.Background(), 2))

	start := time.Now()
	require.NoError(t, b.Acquire(context.Background()))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond,
		"acquire on an empty bucket should wait roughly 1/rate")
}

func TestAvailableNeverExceedsCapacity(t *testing.T) {
	b, err := New(1000.0, 5)
	require.NoError(t, err)

	require.NoError(t, b.Acquire(context.Background()))

	// Plenty of time for the refill computation to overshoot capacity
	// if the clamp were missing.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, b.Acquire(context.Background()))
	assert.LessOrEqual(t, b.Available(), 5.0)
}

func TestAcquireNExceedingCapacity(t *testing.T) {
	b, err := New(10.0, 5)
	require.NoError(t, err)

	err = b.AcquireN(context.Background(), 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds capacity")

	err = b.AcquireN(context.Background(), 0)
	assert.Error(t, err)
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	// Slow refill so the second acquire has to wait.
	b, err := New(0.1, 1)
	require.NoError(t, err)

	require.NoError(t, b.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = b.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second,
		"cancelled acquire must not wait out the full refill")
}

func TestConcurrentAcquiresNeverOversubscribe(t *testing.T) {
	const (
		capacity = 10
		workers  = 25
	)

	// Very slow refill: effectively only the initial burst is available
	// within the test window.
	b, err := New(0.001, capacity)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Acquire(ctx) == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, acquired, capacity,
		"more tokens handed out than the bucket holds")
	assert.Equal(t, capacity, acquired,
		"every initially available token should be handed out")
}
