package cache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeyIsStableAndDistinguishesFlags(t *testing.T) {
	src := []byte("program p is\nbegin\nreturn;\nend program")

	k1 := Key(src, 0, false, false)
	k2 := Key(src, 0, false, false)
	if k1 != k2 {
		t.Errorf("Key is not stable across identical inputs: %s != %s", k1, k2)
	}

	if Key(src, 1, false, false) == k1 {
		t.Error("different optimisation levels should produce different keys")
	}
	if Key(src, 0, true, false) == k1 {
		t.Error("different verbose flags should produce different keys")
	}
	if Key(src, 0, false, true) == k1 {
		t.Error("different no-runtime flags should produce different keys")
	}
	if Key([]byte("program q is\nbegin\nreturn;\nend program"), 0, false, false) == k1 {
		t.Error("different source bytes should produce different keys")
	}
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c := openTestCache(t)
	key := Key([]byte("src"), 0, false, false)

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("expected a miss before Put, got ok=%v err=%v", ok, err)
	}

	if err := c.Put(key, 0, false, "int main(void) { return 0; }"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	text, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if text != "int main(void) { return 0; }" {
		t.Errorf("Get returned %q", text)
	}
}

func TestPutOverwritesPreviousEntry(t *testing.T) {
	c := openTestCache(t)
	key := Key([]byte("src"), 0, false, false)

	if err := c.Put(key, 0, false, "first"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(key, 0, false, "second"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	text, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: text=%q ok=%v err=%v", text, ok, err)
	}
	if text != "second" {
		t.Errorf("Get returned %q, want the overwritten value", text)
	}
}

func TestRuntimeAndNoRuntimeBuildsDoNotShareACacheEntry(t *testing.T) {
	c := openTestCache(t)
	src := []byte("src")

	withRuntime := Key(src, 0, false, false)
	withoutRuntime := Key(src, 0, false, true)

	if err := c.Put(withRuntime, 0, false, `#include "runtime.h"\nint main(void) { return 0; }`); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, ok, err := c.Get(withoutRuntime); err != nil || ok {
		t.Fatalf("expected a miss for the no-runtime key after only the runtime build was cached, got ok=%v err=%v", ok, err)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open("ftp://nowhere"); err == nil {
		t.Fatal("expected an error for an unrecognised DSN scheme")
	}
}

func TestPlaceholderStyleMatchesDriver(t *testing.T) {
	pg := &Cache{driver: "postgres"}
	if got := pg.ph(1); got != "$1" {
		t.Errorf("postgres placeholder 1 = %q, want \"$1\"", got)
	}
	if got := pg.ph(2); got != "$2" {
		t.Errorf("postgres placeholder 2 = %q, want \"$2\"", got)
	}

	for _, driver := range []string{"sqlite3", "mysql", "sqlserver"} {
		c := &Cache{driver: driver}
		if got := c.ph(1); got != "?" {
			t.Errorf("%s placeholder = %q, want \"?\"", driver, got)
		}
	}
}
