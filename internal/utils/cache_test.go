package utils

import (
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	cache, err := NewTTLCache(8)
	if err != nil {
		t.Fatalf("NewTTLCache failed: %v", err)
	}

	cache.Set("k", "value", 50*time.Millisecond)
	if got := cache.Get("k"); got != "value" {
		t.Errorf("Get before expiry = %v", got)
	}

	time.Sleep(60 * time.Millisecond)
	if got := cache.Get("k"); got != nil {
		t.Errorf("Get after expiry = %v, want nil", got)
	}
}

func TestTTLCacheMissAndDelete(t *testing.T) {
	cache, _ := NewTTLCache(8)

	if got := cache.Get("missing"); got != nil {
		t.Errorf("Get on missing key = %v", got)
	}

	cache.Set("k", 42, time.Minute)
	cache.Delete("k")
	if got := cache.Get("k"); got != nil {
		t.Errorf("Get after delete = %v", got)
	}
}

func TestTTLCacheEviction(t *testing.T) {
	cache, _ := NewTTLCache(2)
	cache.Set("a", 1, time.Minute)
	cache.Set("b", 2, time.Minute)
	cache.Set("c", 3, time.Minute)

	// LRU capacity 2: oldest entry evicted
	if got := cache.Get("a"); got != nil {
		t.Errorf("Expected oldest entry evicted, got %v", got)
	}
	if got := cache.Get("c"); got != 3 {
		t.Errorf("Newest entry missing: %v", got)
	}
}
