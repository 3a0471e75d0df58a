package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"listrik/internal/log"
)

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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock { return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)} }

func TestLRUCache_CapacityEviction(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Hour, WithOnEvict(func(key string, _ int, reason EvictReason) {
		if reason != EvictCapacity {
			t.Errorf("reason = %s, want capacity", reason)
		}
		evicted = append(evicted, key)
	}))

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b was least recently used and should be gone")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v", evicted)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.Now))
	c.Set("k", "v")

	clock.Advance(30 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	clock.Advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should have expired without sliding expiration")
	}
}

func TestLRUCache_SlidingExpiry(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.Now), WithSlidingExpiration[string]())
	c.Set("k", "v")

	for i := 0; i < 5; i++ {
		clock.Advance(50 * time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Fatalf("hit %d: entry should stay alive while used", i)
		}
	}
	clock.Advance(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("idle entry should expire")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	clock := newClock()
	reasons := map[string]EvictReason{}
	c := NewLRUCache[int](10, time.Minute,
		WithClock[int](clock.Now),
		WithOnEvict(func(key string, _ int, r EvictReason) { reasons[key] = r }),
	)
	c.Set("old1", 1)
	c.Set("old2", 2)
	clock.Advance(2 * time.Minute)
	c.Set("fresh", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 1 || reasons["old1"] != EvictExpired || reasons["old2"] != EvictExpired {
		t.Fatalf("size=%d reasons=%v", c.Size(), reasons)
	}

	c.Delete("fresh")
	if reasons["fresh"] != EvictDeleted {
		t.Fatalf("delete reason = %v", reasons["fresh"])
	}
}

func TestLRUCache_GetOrCreate(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	calls := 0
	create := func() (int, error) { calls++; return 42, nil }

	v, created, err := c.GetOrCreate("k", create)
	if err != nil || !created || v != 42 {
		t.Fatalf("first = %v %v %v", v, created, err)
	}
	v, created, err = c.GetOrCreate("k", create)
	if err != nil || created || v != 42 || calls != 1 {
		t.Fatalf("second = %v %v %v calls=%d", v, created, err, calls)
	}

	boom := errors.New("boom")
	if _, _, err := c.GetOrCreate("x", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := c.Get("x"); ok {
		t.Fatalf("failed create must not be cached")
	}
}

func TestLRUCache_GetOrCreateConcurrent(t *testing.T) {
	c := NewLRUCache[*int](10, time.Hour)
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		calls int
		seen  = map[*int]bool{}
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, _ := c.GetOrCreate("shared", func() (*int, error) {
				calls++
				n := 1
				return &n, nil
			})
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if calls != 1 || len(seen) != 1 {
		t.Fatalf("calls=%d distinct=%d, want a single creation", calls, len(seen))
	}
}

func TestManager_Sweep(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.Now))
	c.Set("a", 1)
	c.Set("b", 2)

	m := NewManager(log.Discard())
	m.Register("test", c)
	clock.Advance(time.Hour)

	if n := m.Sweep(); n != 2 {
		t.Fatalf("Sweep = %d, want 2", n)
	}
}

func TestManager_StartStop(t *testing.T) {
	m := NewManager(log.Discard())
	m.Register("empty", NewLRUCache[int](1, time.Minute))
	m.StartCleanup(context.Background(), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
	m.Stop()
}
