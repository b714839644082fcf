package store

import (
	"testing"
	"time"
)

func TestKeyIsCanonicalAcrossArgumentOrder(t *testing.T) {
	a := Key("locations", "country=US", "city=NYC")
	b := Key("locations", "city=NYC", "country=US")
	if a != b {
		t.Errorf("expected identical keys, got %q and %q", a, b)
	}
	if Key("countries") != "countries" {
		t.Errorf("expected bare op key, got %q", Key("countries"))
	}
}

func TestCacheGetSetAndExpiry(t *testing.T) {
	base := time.Now()
	now := base
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected cached value, got %v (%v)", v, ok)
	}

	now = base.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire after TTL")
	}
}

func TestCacheSetSweepsExpiredEntries(t *testing.T) {
	base := time.Now()
	now := base
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	now = base.Add(2 * time.Minute)
	c.Set("fresh", 2)

	if got := c.Len(); got != 1 {
		t.Errorf("expected expired entry swept on write, have %d entries", got)
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if got := c.Len(); got != 0 {
		t.Errorf("expected empty cache after Clear, have %d entries", got)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestCacheWithoutTTLDoesNotExpire(t *testing.T) {
	base := time.Now()
	now := base
	c := NewCache(0)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = base.Add(24 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected entry to persist without TTL")
	}
}
