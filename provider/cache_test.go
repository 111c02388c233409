package provider

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	value := map[string]string{"user_Type": "order"}
	require.NoError(t, store.Set(ctx, "k", value, time.Hour))

	value["user_Type"] = "mutated"

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_Type": "order"}, got)

	got["user_Type"] = "mutated"
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "order", again["user_Type"])

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryStore(0)
	store.SetClock(clock.Now)

	require.NoError(t, store.Set(ctx, "k", map[string]string{"a": "1"}, 24*time.Hour))

	clock.Advance(24*time.Hour - time.Second)
	_, err := store.Get(ctx, "k")
	assert.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Size())
	assert.Equal(t, int64(1), store.Stats().TTLExpiries)
}

func TestMemoryStore_OverwriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryStore(0)
	store.SetClock(clock.Now)

	require.NoError(t, store.Set(ctx, "k", map[string]string{"v": "1"}, time.Hour))
	clock.Advance(50 * time.Minute)
	require.NoError(t, store.Set(ctx, "k", map[string]string{"v": "2"}, time.Hour))
	clock.Advance(50 * time.Minute)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", got["v"])
	assert.Equal(t, 1, store.Size())
}

func TestMemoryStore_FullRejectsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)

	require.NoError(t, store.Set(ctx, "a", map[string]string{"v": "a"}, 24*time.Hour))
	require.NoError(t, store.Set(ctx, "b", map[string]string{"v": "b"}, 24*time.Hour))

	err := store.Set(ctx, "c", map[string]string{"v": "c"}, 24*time.Hour)
	assert.ErrorIs(t, err, ErrStoreFull)

	// live records survive
	_, err = store.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "b")
	assert.NoError(t, err)

	// overwriting an existing key needs no room
	assert.NoError(t, store.Set(ctx, "a", map[string]string{"v": "a2"}, 24*time.Hour))

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Rejections)
	assert.Equal(t, int64(0), stats.Evictions)
}

func TestMemoryStore_FullReclaimsExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryStore(2)
	store.SetClock(clock.Now)

	require.NoError(t, store.Set(ctx, "short", map[string]string{"v": "1"}, time.Minute))
	require.NoError(t, store.Set(ctx, "long", map[string]string{"v": "2"}, time.Hour))

	clock.Advance(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "new", map[string]string{"v": "3"}, time.Hour))

	_, err := store.Get(ctx, "long")
	assert.NoError(t, err)
	assert.Equal(t, 2, store.Size())
	assert.Equal(t, int64(1), store.Stats().TTLExpiries)
}

func TestEvictingMemoryStore_LRUEviction(t *testing.T) {
	ctx := context.Background()
	store := NewEvictingMemoryStore(2)

	require.NoError(t, store.Set(ctx, "a", map[string]string{"v": "a"}, time.Hour))
	require.NoError(t, store.Set(ctx, "b", map[string]string{"v": "b"}, time.Hour))

	// touch a so b becomes least recently used
	_, err := store.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "c", map[string]string{"v": "c"}, time.Hour))

	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.MaxSize)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.75, stats.HitRatio, 0.0001)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryStore(0)
	store.SetClock(clock.Now)

	require.NoError(t, store.Set(ctx, "short", map[string]string{"v": "1"}, time.Minute))
	require.NoError(t, store.Set(ctx, "long", map[string]string{"v": "2"}, time.Hour))

	clock.Advance(2 * time.Minute)
	store.Cleanup()

	assert.Equal(t, 1, store.Size())
	assert.Equal(t, int64(1), store.Stats().TTLExpiries)
}

func TestMemoryStore_RunCleanupStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(50)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 50 {
				key := fmt.Sprintf("k-%d-%d", i, j)
				_ = store.Set(ctx, key, map[string]string{"v": key}, time.Hour)
				_, _ = store.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Size(), 50)
}
