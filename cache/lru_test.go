package cache

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/coreos/jbod"
)

func block(cfg jbod.Config, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, int(cfg.BlockSize))
}

func newTestCache(t *testing.T, capacity int) (*Cache, jbod.Config) {
	cfg := jbod.DefaultConfig()
	c, err := New(capacity, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c, cfg
}

func TestNewCapacity(t *testing.T) {
	cfg := jbod.DefaultConfig()
	for _, n := range []int{-1, 0, 1, 4097} {
		if _, err := New(n, cfg); !errors.Is(err, jbod.ErrBadCapacity) {
			t.Errorf("New(%d): got %v", n, err)
		}
	}
	for _, n := range []int{2, 4096} {
		if _, err := New(n, cfg); err != nil {
			t.Errorf("New(%d): %v", n, err)
		}
	}
}

func TestEnabled(t *testing.T) {
	c, cfg := newTestCache(t, 2)
	if c.Enabled() {
		t.Fatal("a cache of two entries should be disabled")
	}
	c, _ = newTestCache(t, 3)
	if _, err := c.Insert(jbod.BlockRef{Disk: 0, Block: 0}, block(cfg, 1)); err != nil {
		t.Fatal(err)
	}
	if !c.Enabled() {
		t.Fatal("a cache of three entries should be enabled")
	}
	var nilCache *Cache
	if nilCache.Enabled() {
		t.Fatal("nil cache enabled")
	}
}

func TestInsertLookup(t *testing.T) {
	c, cfg := newTestCache(t, 16)
	for i := 0; i < 16; i++ {
		res, err := c.Insert(jbod.BlockRef{Disk: i % 4, Block: i}, block(cfg, byte(i)))
		if err != nil {
			t.Fatal(err)
		}
		if res != Filled {
			t.Fatalf("insert %d: got %v", i, res)
		}
	}
	buf := make([]byte, cfg.BlockSize)
	for i := 15; i >= 0; i-- {
		if !c.Lookup(jbod.BlockRef{Disk: i % 4, Block: i}, buf) {
			t.Fatalf("block %d missing", i)
		}
		if !bytes.Equal(buf, block(cfg, byte(i))) {
			t.Fatalf("block %d has wrong data", i)
		}
	}
}

func TestLookupCopies(t *testing.T) {
	c, cfg := newTestCache(t, 4)
	ref := jbod.BlockRef{Disk: 1, Block: 1}
	data := block(cfg, 7)
	c.Insert(ref, data)
	data[0] = 0
	buf := make([]byte, cfg.BlockSize)
	c.Lookup(ref, buf)
	if buf[0] != 7 {
		t.Fatal("cache aliases the inserted buffer")
	}
	buf[1] = 0
	c.Lookup(ref, buf)
	if buf[1] != 7 {
		t.Fatal("cache aliases the lookup buffer")
	}
}

func TestLookupMiss(t *testing.T) {
	c, cfg := newTestCache(t, 4)
	buf := block(cfg, 9)

	// An empty cache fails fast.
	if c.Lookup(jbod.BlockRef{}, buf) {
		t.Fatal("hit on empty cache")
	}
	if s := c.Stats(); s.Queries != 0 {
		t.Fatalf("empty lookup counted: %+v", s)
	}

	c.Insert(jbod.BlockRef{Disk: 0, Block: 1}, block(cfg, 1))
	before := c.clock
	if c.Lookup(jbod.BlockRef{Disk: 0, Block: 2}, buf) {
		t.Fatal("hit on absent key")
	}
	if !bytes.Equal(buf, block(cfg, 9)) {
		t.Fatal("miss modified the buffer")
	}
	if c.clock != before {
		t.Fatal("miss advanced the clock")
	}
	s := c.Stats()
	if s.Queries != 1 || s.Hits != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestInsertDuplicate(t *testing.T) {
	c, cfg := newTestCache(t, 4)
	ref := jbod.BlockRef{Disk: 3, Block: 4}
	c.Insert(ref, block(cfg, 1))
	res, err := c.Insert(ref, block(cfg, 2))
	if err != nil {
		t.Fatal(err)
	}
	if res != Updated {
		t.Fatalf("got %v, want updated", res)
	}
	if c.Len() != 1 {
		t.Fatalf("duplicate took a second slot: %d", c.Len())
	}
	buf := make([]byte, cfg.BlockSize)
	c.Lookup(ref, buf)
	if buf[0] != 2 {
		t.Fatal("duplicate insert didn't update data")
	}
}

func TestInsertInvalid(t *testing.T) {
	c, cfg := newTestCache(t, 4)
	for _, ref := range []jbod.BlockRef{{Disk: -1, Block: 0}, {Disk: 16, Block: 0}, {Disk: 0, Block: 256}, {Disk: 0, Block: -1}} {
		if _, err := c.Insert(ref, block(cfg, 0)); !errors.Is(err, jbod.ErrOutOfRange) {
			t.Errorf("%v: got %v", ref, err)
		}
	}
	if _, err := c.Insert(jbod.BlockRef{}, []byte{1}); !errors.Is(err, jbod.ErrBadBlockSize) {
		t.Fatalf("got %v", err)
	}
	var nilCache *Cache
	if _, err := nilCache.Insert(jbod.BlockRef{}, block(cfg, 0)); !errors.Is(err, jbod.ErrNoCache) {
		t.Fatalf("got %v", err)
	}
}

func TestEvictLRU(t *testing.T) {
	c, cfg := newTestCache(t, 3)
	a := jbod.BlockRef{Disk: 0, Block: 0}
	b := jbod.BlockRef{Disk: 0, Block: 1}
	d := jbod.BlockRef{Disk: 0, Block: 2}
	c.Insert(a, block(cfg, 'a'))
	c.Insert(b, block(cfg, 'b'))
	c.Insert(d, block(cfg, 'd'))

	buf := make([]byte, cfg.BlockSize)
	// Touch a so that b is now the oldest.
	c.Lookup(a, buf)

	e := jbod.BlockRef{Disk: 1, Block: 0}
	res, err := c.Insert(e, block(cfg, 'e'))
	if err != nil {
		t.Fatal(err)
	}
	if res != Evicted {
		t.Fatalf("got %v, want evicted", res)
	}
	if c.Lookup(b, buf) {
		t.Fatal("b should have been evicted")
	}
	for _, ref := range []jbod.BlockRef{a, d, e} {
		if !c.Lookup(ref, buf) {
			t.Fatalf("%v should still be cached", ref)
		}
	}
	if c.Stats().Evictions != 1 {
		t.Fatal("eviction not counted")
	}
}

func TestEvictTieBreak(t *testing.T) {
	c, cfg := newTestCache(t, 3)
	for i := 0; i < 3; i++ {
		c.Insert(jbod.BlockRef{Disk: 0, Block: i}, block(cfg, byte(i)))
	}
	for i := range c.entries {
		c.entries[i].lastAccess = 5
	}
	c.Insert(jbod.BlockRef{Disk: 2, Block: 2}, block(cfg, 9))
	if c.entries[0].ref != (jbod.BlockRef{Disk: 2, Block: 2}) {
		t.Fatalf("tie should evict the first entry, got %+v", c.entries[0].ref)
	}
}

func TestFillBeforeEvict(t *testing.T) {
	c, cfg := newTestCache(t, 8)
	for i := 0; i < 8; i++ {
		res, _ := c.Insert(jbod.BlockRef{Disk: 1, Block: i}, block(cfg, 0))
		if res == Evicted {
			t.Fatalf("evicted with %d free slots", 8-i)
		}
	}
	if res, _ := c.Insert(jbod.BlockRef{Disk: 2, Block: 0}, block(cfg, 0)); res != Evicted {
		t.Fatal("full cache should evict")
	}
}

func TestClockMonotonic(t *testing.T) {
	c, cfg := newTestCache(t, 3)
	buf := make([]byte, cfg.BlockSize)
	last := c.clock
	step := func(what string) {
		if c.clock <= last {
			t.Fatalf("%s didn't advance the clock", what)
		}
		last = c.clock
	}
	ref := jbod.BlockRef{Disk: 0, Block: 7}
	c.Insert(ref, buf)
	step("insert")
	c.Lookup(ref, buf)
	step("hit")
	c.Update(ref, buf)
	step("update")
	if c.Update(jbod.BlockRef{Disk: 9, Block: 9}, buf) {
		t.Fatal("update of absent key reported success")
	}
	if c.clock != last {
		t.Fatal("update of absent key advanced the clock")
	}
}

func TestHitRate(t *testing.T) {
	c, cfg := newTestCache(t, 4)
	if !math.IsNaN(c.HitRate()) {
		t.Fatal("hit rate without queries should be NaN")
	}
	buf := make([]byte, cfg.BlockSize)
	c.Insert(jbod.BlockRef{Disk: 0, Block: 0}, buf)
	for i := 0; i < 8; i++ {
		c.Lookup(jbod.BlockRef{Disk: 0, Block: i % 2}, buf)
	}
	if r := c.HitRate(); r != 0.5 {
		t.Fatalf("hit rate %v, want 0.5", r)
	}
}
