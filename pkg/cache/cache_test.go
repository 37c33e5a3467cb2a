package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock drives expiry deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache[V any](ttl time.Duration, opts ...Option) (*Cache[V], *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := New[V](ttl, opts...)
	c.now = clock.Now
	return c, clock
}

func TestGetSetDelete(t *testing.T) {
	c, _ := newTestCache[int](time.Minute)
	if _, err := c.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	c.Set("k", 42)
	v, err := c.Get("k")
	if err != nil || v != 42 {
		t.Fatalf("Get = %d, %v", v, err)
	}
	c.Delete("k")
	if _, err := c.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestExpiryIsLazy(t *testing.T) {
	var expired []string
	c, clock := newTestCache[string](time.Minute, WithExpiryFunc(func(key string) {
		expired = append(expired, key)
	}))
	c.Set("k", "v")

	clock.Advance(59 * time.Second)
	if v, err := c.Get("k"); err != nil || v != "v" {
		t.Fatalf("entry expired early: %q, %v", v, err)
	}

	clock.Advance(2 * time.Second)
	if len(expired) != 0 {
		t.Fatal("expiry callback fired before any access")
	}
	if _, err := c.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
	if len(expired) != 1 || expired[0] != "k" {
		t.Errorf("expiry callback saw %v", expired)
	}
}

func TestExpiryAtExactDeadline(t *testing.T) {
	c, clock := newTestCache[string](time.Minute)
	c.Set("k", "v")
	clock.Advance(time.Minute)
	if _, err := c.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("read at exactly the deadline must miss, got %v", err)
	}

	c.Set("k2", "v2")
	clock.Advance(time.Minute)
	if got := c.Len(); got != 0 {
		t.Errorf("Len() at exactly the deadline = %d, want 0", got)
	}
}

func TestRefreshOnAccess(t *testing.T) {
	c, clock := newTestCache[string](time.Minute, WithRefreshOnAccess())
	c.Set("k", "v")

	// Touch the entry every 40s; it must survive past the original ttl.
	for i := 0; i < 3; i++ {
		clock.Advance(40 * time.Second)
		if _, err := c.Get("k"); err != nil {
			t.Fatalf("refresh-on-access entry expired at step %d: %v", i, err)
		}
	}

	clock.Advance(2 * time.Minute)
	if _, err := c.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatal("idle entry must still expire")
	}
}

func TestNoRefreshByDefault(t *testing.T) {
	c, clock := newTestCache[string](time.Minute)
	c.Set("k", "v")
	clock.Advance(40 * time.Second)
	if _, err := c.Get("k"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	clock.Advance(30 * time.Second)
	if _, err := c.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatal("access must not extend the deadline by default")
	}
}

func TestLenExcludesExpired(t *testing.T) {
	c, clock := newTestCache[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if got := c.Len(); got != 2 {
		t.Fatalf("Len() = %d", got)
	}
	clock.Advance(2 * time.Minute)
	if got := c.Len(); got != 0 {
		t.Fatalf("Len() after expiry = %d", got)
	}
}

func TestGetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	c, _ := newTestCache[int](time.Minute)

	var loads atomic.Int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (int, error) {
		loads.Add(1)
		<-release
		return 7, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]int, workers)
	errs := make([]error, workers)
	started := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			results[i], errs[i] = c.GetOrLoad(context.Background(), "k", loader)
		}(i)
	}
	for i := 0; i < workers; i++ {
		<-started
	}
	// Give the goroutines a moment to pile onto the flight.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("loader ran %d times, want 1", got)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil || results[i] != 7 {
			t.Fatalf("worker %d: %d, %v", i, results[i], errs[i])
		}
	}
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	c, _ := newTestCache[int](time.Minute)

	boom := errors.New("boom")
	var loads atomic.Int32
	_, err := c.GetOrLoad(context.Background(), "k", func(ctx context.Context) (int, error) {
		loads.Add(1)
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	// A later call retries rather than serving the failure.
	v, err := c.GetOrLoad(context.Background(), "k", func(ctx context.Context) (int, error) {
		loads.Add(1)
		return 9, nil
	})
	if err != nil || v != 9 {
		t.Fatalf("retry = %d, %v", v, err)
	}
	if loads.Load() != 2 {
		t.Errorf("loader ran %d times, want 2", loads.Load())
	}
}

func TestGetOrLoadServesCachedValue(t *testing.T) {
	c, _ := newTestCache[int](time.Minute)
	c.Set("k", 5)
	v, err := c.GetOrLoad(context.Background(), "k", func(ctx context.Context) (int, error) {
		t.Fatal("loader must not run on a hit")
		return 0, nil
	})
	if err != nil || v != 5 {
		t.Fatalf("GetOrLoad = %d, %v", v, err)
	}
}
