package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// minWait bounds how briefly a caller sleeps between token checks.
// Timer granularity varies across platforms; re-checking faster than
// this just burns CPU on lock contention.
const minWait = 10 * time.Millisecond

// Bucket is a token bucket rate limiter. It admits bursts up to its
// capacity and refills at a fixed rate, bounding the long-run request
// rate of all callers sharing the bucket.
//
// All token accounting happens under a single mutex; waiting for a
// refill happens outside it, so a parked caller never blocks another
// caller's accounting.
type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
}

// New creates a token bucket that starts full.
// rate is the refill rate in tokens per second, capacity the maximum
// number of tokens held (burst size). Both must be positive.
func New(rate float64, capacity int) (*Bucket, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("ratelimit: rate must be positive, got %v", rate)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("ratelimit: capacity must be positive, got %d", capacity)
	}

	return &Bucket{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		rate:       rate,
		lastRefill: time.Now(),
	}, nil
}

// Acquire takes a single token, waiting for a refill if none is
// available. It returns early with the context's error if ctx is
// cancelled while waiting; no tokens are consumed in that case.
func (b *Bucket) Acquire(ctx context.Context) error {
	return b.AcquireN(ctx, 1)
}

// AcquireN takes n tokens. Requesting more than the bucket's capacity
// can never succeed and is reported as an error immediately rather
// than waiting forever.
func (b *Bucket) AcquireN(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("ratelimit: token count must be positive, got %d", n)
	}
	if float64(n) > b.capacity {
		return fmt.Errorf("ratelimit: requested %d tokens exceeds capacity %d", n, int(b.capacity))
	}

	for {
		wait := b.take(float64(n))
		if wait == 0 {
			return nil
		}
		if wait < minWait {
			wait = minWait
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// take refills the bucket and attempts to consume n tokens. It returns
// zero on success, otherwise the estimated wait until enough tokens
// will be available.
func (b *Bucket) take(n float64) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())

	if b.tokens >= n {
		b.tokens -= n
		return 0
	}

	needed := n - b.tokens
	return time.Duration(needed / b.rate * float64(time.Second))
}

// refillLocked adds tokens proportional to the time elapsed since the
// last refill, clamped to capacity. Callers must hold b.mu.
func (b *Bucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.lastRefill = now

	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

// Available returns the current token count without refilling.
// Intended for tests and introspection; the value is stale as soon as
// the lock is released.
func (b *Bucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

// Capacity returns the bucket's maximum token count.
func (b *Bucket) Capacity() int {
	return int(b.capacity)
}
