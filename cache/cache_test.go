package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSetGet(t *testing.T) {
	c := newTestCache(t)

	entry := &Entry{Text: " world", Source: "local", CreatedAt: time.Now()}
	key := GenerateKey("qwen", "Hello")

	if err := c.Set(key, entry, DefaultTTL); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get: entry missing")
	}
	if got.Text != " world" {
		t.Errorf("Text = %q, want %q", got.Text, " world")
	}
	if got.Source != "local" {
		t.Errorf("Source = %q, want local", got.Source)
	}
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)
	if _, ok := c.Get(GenerateKey("nothing")); ok {
		t.Error("Get returned an entry for an unknown key")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)

	key := GenerateKey("short-lived")
	if err := c.Set(key, &Entry{Text: "x"}, 100*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok := c.Get(key); !ok {
		t.Fatal("entry missing before TTL elapsed")
	}

	time.Sleep(200 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestGenerateKeyStable(t *testing.T) {
	a := GenerateKey("model", "Hello")
	b := GenerateKey("model", "Hello")
	if a != b {
		t.Errorf("same parts produced different keys: %q vs %q", a, b)
	}

	// Part boundaries matter: ("ab","c") must differ from ("a","bc").
	if GenerateKey("ab", "c") == GenerateKey("a", "bc") {
		t.Error("key ignores part boundaries")
	}
}
