package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("https://example.com/a")
	k2 := Key("https://example.com/a")
	k3 := Key("https://example.com/b")

	if k1 != k2 {
		t.Error("same URL should produce the same key")
	}
	if k1 == k3 {
		t.Error("different URLs should produce different keys")
	}
	if len(k1) == 0 {
		t.Error("key should not be empty")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache should not find anything")
	}

	if err := c.Set("k", []byte("content"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, found := c.Get("k")
	if !found {
		t.Fatal("expected hit after set")
	}
	if !bytes.Equal(val, []byte("content")) {
		t.Errorf("got %q, want %q", val, "content")
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set(Key("https://example.com/x"), []byte("page text"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get(Key("https://example.com/x"))
	if !found {
		t.Fatal("expected hit after set")
	}
	if !bytes.Equal(val, []byte("page text")) {
		t.Errorf("got %q, want %q", val, "page text")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("short", []byte("gone soon"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("expected miss after TTL expiry")
	}
}

func TestDiskCache_Clear(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("expected miss after clear")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer, then read through a fresh layered cache.
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("persisted"), time.Minute); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := layered.Get("k")
	if !found {
		t.Fatal("expected disk hit through layered cache")
	}
	if !bytes.Equal(val, []byte("persisted")) {
		t.Errorf("got %q, want %q", val, "persisted")
	}

	// The hit should now be served from memory even if the disk copy goes.
	_ = disk.Delete("k")
	if _, found := layered.Get("k"); !found {
		t.Error("expected promoted memory hit after disk delete")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := layered.Set("k", []byte("both"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	disk := NewDiskCache(dir, time.Minute)
	if _, found := disk.Get("k"); !found {
		t.Error("expected the disk layer to hold the entry")
	}
}
