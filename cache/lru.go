// cache implements the fixed-capacity LRU block cache that sits in front of
// a disk array.
package cache

import (
	"fmt"
	"math"

	"github.com/coreos/pkg/capnslog"

	"github.com/coreos/jbod"
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "cache")

// InsertResult says what Insert did with a block.
type InsertResult int

const (
	// Filled means the block went into a free slot.
	Filled InsertResult = iota
	// Evicted means the least recently used block was replaced.
	Evicted
	// Updated means the block was already cached and its data overwritten.
	Updated
)

func (r InsertResult) String() string {
	switch r {
	case Filled:
		return "filled"
	case Evicted:
		return "evicted"
	case Updated:
		return "updated"
	}
	return fmt.Sprintf("InsertResult(%d)", int(r))
}

type entry struct {
	valid      bool
	ref        jbod.BlockRef
	data       []byte
	lastAccess uint64
}

// Cache is an LRU cache of whole blocks keyed by disk and block. Data is
// always copied in and out; callers never hold cache memory.
//
// Cache does no locking of its own. The owner serializes access.
type Cache struct {
	cfg     jbod.Config
	entries []entry
	index   map[jbod.BlockRef]int
	clock   uint64

	queries   uint64
	hits      uint64
	evictions uint64
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Capacity  int
	Len       int
	Queries   uint64
	Hits      uint64
	Evictions uint64
}

// New allocates a cache of capacity entries, all of them empty.
func New(capacity int, cfg jbod.Config) (*Cache, error) {
	if capacity < jbod.MinCacheSize || capacity > jbod.MaxCacheSize {
		return nil, fmt.Errorf("%w: %d, want %d to %d", jbod.ErrBadCapacity,
			capacity, jbod.MinCacheSize, jbod.MaxCacheSize)
	}
	c := &Cache{
		cfg:     cfg,
		entries: make([]entry, capacity),
		index:   make(map[jbod.BlockRef]int, capacity),
	}
	backing := make([]byte, capacity*int(cfg.BlockSize))
	for i := range c.entries {
		off := i * int(cfg.BlockSize)
		c.entries[i].data = backing[off : off+int(cfg.BlockSize) : off+int(cfg.BlockSize)]
	}
	clog.Debugf("created cache with %d entries", capacity)
	return c, nil
}

func (c *Cache) Capacity() int {
	return len(c.entries)
}

// Len is the number of valid entries.
func (c *Cache) Len() int {
	return len(c.index)
}

// Enabled reports whether the cache is worth consulting. Caches of the
// minimum size are treated as disabled.
func (c *Cache) Enabled() bool {
	return c != nil && len(c.entries) > jbod.MinCacheSize
}

func (c *Cache) tick(i int) {
	c.clock++
	c.entries[i].lastAccess = c.clock
}

// Lookup copies the cached block for ref into buf and reports whether it was
// there. An empty cache misses without counting the query. On a miss buf is
// left untouched.
func (c *Cache) Lookup(ref jbod.BlockRef, buf []byte) bool {
	if c == nil || len(c.index) == 0 {
		return false
	}
	c.queries++
	promCacheQueries.Inc()
	i, ok := c.index[ref]
	if !ok {
		return false
	}
	c.hits++
	promCacheHits.Inc()
	c.tick(i)
	copy(buf, c.entries[i].data)
	return true
}

// Insert caches data for ref. If ref is already cached its data is replaced
// and Updated is returned. Otherwise the first free slot is used, and only
// once every slot is valid is the least recently used entry evicted.
func (c *Cache) Insert(ref jbod.BlockRef, data []byte) (InsertResult, error) {
	if c == nil {
		return 0, jbod.ErrNoCache
	}
	if !c.cfg.Contains(ref) {
		return 0, fmt.Errorf("%w: %s", jbod.ErrOutOfRange, ref)
	}
	if uint64(len(data)) != c.cfg.BlockSize {
		return 0, fmt.Errorf("%w: got %d bytes", jbod.ErrBadBlockSize, len(data))
	}
	if _, ok := c.index[ref]; ok {
		c.Update(ref, data)
		return Updated, nil
	}

	res := Filled
	slot := c.freeSlot()
	if slot < 0 {
		slot = c.victim()
		old := c.entries[slot].ref
		delete(c.index, old)
		c.evictions++
		promCacheEvictions.Inc()
		clog.Tracef("evicting %s for %s", old, ref)
		res = Evicted
	}
	e := &c.entries[slot]
	e.valid = true
	e.ref = ref
	copy(e.data, data)
	c.index[ref] = slot
	c.tick(slot)
	return res, nil
}

// Update overwrites the data of a cached block. It reports false, and does
// nothing, if ref isn't cached.
func (c *Cache) Update(ref jbod.BlockRef, data []byte) bool {
	if c == nil {
		return false
	}
	i, ok := c.index[ref]
	if !ok {
		return false
	}
	copy(c.entries[i].data, data)
	c.tick(i)
	return true
}

func (c *Cache) freeSlot() int {
	if len(c.index) == len(c.entries) {
		return -1
	}
	for i := range c.entries {
		if !c.entries[i].valid {
			return i
		}
	}
	return -1
}

// victim picks the entry with the oldest access time. Ties go to the lowest
// index. A linear scan is fine at MaxCacheSize entries.
func (c *Cache) victim() int {
	lru := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].lastAccess < c.entries[lru].lastAccess {
			lru = i
		}
	}
	return lru
}

// HitRate is hits over queries, or NaN before the first query.
func (c *Cache) HitRate() float64 {
	if c == nil || c.queries == 0 {
		return math.NaN()
	}
	return float64(c.hits) / float64(c.queries)
}

func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Capacity:  len(c.entries),
		Len:       len(c.index),
		Queries:   c.queries,
		Hits:      c.hits,
		Evictions: c.evictions,
	}
}
