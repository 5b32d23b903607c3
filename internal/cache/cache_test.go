package cache

import (
	"bytes"
	"testing"
	"time"
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	c, err := NewMemory(16)
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	return c
}

func TestMemorySetGet(t *testing.T) {
	c := newMemory(t)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on an empty cache should miss")
	}

	c.Set("k", []byte("hello"), time.Minute)
	blob, ok := c.Get("k")
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if !bytes.Equal(blob, []byte("hello")) {
		t.Errorf("got %q, want %q", blob, "hello")
	}

	// Overwrite replaces the blob.
	c.Set("k", []byte("world"), time.Minute)
	blob, _ = c.Get("k")
	if !bytes.Equal(blob, []byte("world")) {
		t.Errorf("after overwrite got %q, want %q", blob, "world")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := newMemory(t)

	c.Set("k", []byte("soon gone"), 10*time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should be readable before the TTL")
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := newMemory(t)

	c.Set("k", []byte("x"), time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("entry should be gone after Delete")
	}

	// Deleting a missing key is a no-op.
	c.Delete("missing")
}
