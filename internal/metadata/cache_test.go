package metadata

import (
	"testing"
	"time"
)

func newTestCache[V any](t *testing.T, cfg CacheConfig) (*Cache[V], *time.Time) {
	t.Helper()
	c := NewCache[V](cfg)
	t.Cleanup(c.Stop)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache[string](t, CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("key1", "value1")

	val, ok := cache.Get("key1")
	if !ok {
		t.Fatal("expected key1 to exist")
	}
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}

	if _, ok := cache.Get("nonexistent"); ok {
		t.Error("expected missing key to not exist")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache, now := newTestCache[int](t, CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("a", 1)
	cache.SetWithTTL("b", 2, time.Hour)

	*now = now.Add(2 * time.Minute)

	if _, ok := cache.Get("a"); ok {
		t.Error("expected a to be expired")
	}
	if v, ok := cache.Get("b"); !ok || v != 2 {
		t.Errorf("expected b to survive with custom TTL, got %v, %v", v, ok)
	}
}

func TestCache_DeleteClearLen(t *testing.T) {
	cache, _ := newTestCache[string](t, CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("a", "1")
	cache.Set("b", "2")
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("expected a to be deleted")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", cache.Len())
	}
}

func TestCache_Eviction(t *testing.T) {
	cache, now := newTestCache[int](t, CacheConfig{TTL: time.Minute, MaxItems: 10})

	for i := 0; i < 10; i++ {
		cache.Set(string(rune('a'+i)), i)
		*now = now.Add(time.Second)
	}

	cache.Set("k", 10)

	if cache.Len() > 10 {
		t.Errorf("Len() = %d, want at most 10", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("expected the entry closest to expiry to be evicted")
	}
	if _, ok := cache.Get("k"); !ok {
		t.Error("expected new entry to be stored")
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	cache, _ := newTestCache[int](t, CacheConfig{TTL: time.Minute, MaxItems: 2})

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("b", 3)

	if _, ok := cache.Get("a"); !ok {
		t.Error("overwriting an existing key should not evict others")
	}
	if v, _ := cache.Get("b"); v != 3 {
		t.Errorf("b = %d, want 3", v)
	}
}

func TestCache_StopIsIdempotent(t *testing.T) {
	cache := NewCache[string](CacheConfig{})
	cache.Stop()
	cache.Stop()
}
