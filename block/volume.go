// block presents a disk array as one linear volume. Byte ranges are split
// into whole-block device operations, with an optional LRU cache in front of
// the device.
package block

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/coreos/pkg/capnslog"
	"golang.org/x/net/context"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/cache"
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "block")

var (
	_ io.ReaderAt = &Volume{}
	_ io.WriterAt = &Volume{}
)

// Volume owns the mount state of an array and the cache in front of it.
//
// The cache and the device are assumed never to diverge outside of the
// volume: a cached block is written back without being re-read first.
type Volume struct {
	mut     sync.Mutex
	cfg     jbod.Config
	dev     jbod.Device
	mounted bool
	cache   *cache.Cache
}

// NewVolume returns an unmounted volume over dev. If cfg.CacheSize is set a
// cache of that many entries is created.
func NewVolume(cfg jbod.Config, dev jbod.Device) (*Volume, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v := &Volume{
		cfg: cfg,
		dev: dev,
	}
	if cfg.CacheSize != 0 {
		if err := v.CreateCache(cfg.CacheSize); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *Volume) Config() jbod.Config { return v.cfg }

// Size is the size of the volume in bytes.
func (v *Volume) Size() uint64 { return v.cfg.Size() }

func (v *Volume) Mounted() bool {
	v.mut.Lock()
	defer v.mut.Unlock()
	return v.mounted
}

func (v *Volume) Mount() error {
	v.mut.Lock()
	defer v.mut.Unlock()
	if v.mounted {
		return jbod.ErrMounted
	}
	if err := v.dev.Execute(context.TODO(), jbod.MountOp(), nil); err != nil {
		return err
	}
	v.mounted = true
	clog.Infof("mounted %d disks, %d bytes", v.cfg.NumDisks, v.cfg.Size())
	return nil
}

func (v *Volume) Unmount() error {
	v.mut.Lock()
	defer v.mut.Unlock()
	if !v.mounted {
		return jbod.ErrNotMounted
	}
	if err := v.dev.Execute(context.TODO(), jbod.UnmountOp(), nil); err != nil {
		return err
	}
	v.mounted = false
	clog.Infof("unmounted")
	return nil
}

// CreateCache puts a cache of capacity entries in front of the device.
func (v *Volume) CreateCache(capacity int) error {
	v.mut.Lock()
	defer v.mut.Unlock()
	if v.cache != nil {
		return jbod.ErrCacheExists
	}
	c, err := cache.New(capacity, v.cfg)
	if err != nil {
		return err
	}
	v.cache = c
	if !c.Enabled() {
		clog.Warningf("cache of %d entries is too small and will not be used", capacity)
	}
	return nil
}

func (v *Volume) DestroyCache() error {
	v.mut.Lock()
	defer v.mut.Unlock()
	if v.cache == nil {
		return jbod.ErrNoCache
	}
	v.cache = nil
	return nil
}

// HitRate is the cache hit rate, or NaN if there is no cache or it hasn't
// been queried.
func (v *Volume) HitRate() float64 {
	v.mut.Lock()
	defer v.mut.Unlock()
	if v.cache == nil {
		return math.NaN()
	}
	return v.cache.HitRate()
}

// CacheStats reports the cache counters, and false if there is no cache.
func (v *Volume) CacheStats() (cache.Stats, bool) {
	v.mut.Lock()
	defer v.mut.Unlock()
	if v.cache == nil {
		return cache.Stats{}, false
	}
	return v.cache.Stats(), true
}

func (v *Volume) checkRange(n int, off int64) error {
	if !v.mounted {
		return jbod.ErrNotMounted
	}
	if n > v.cfg.MaxTransfer {
		return fmt.Errorf("%w: %d bytes, limit is %d", jbod.ErrTooLong, n, v.cfg.MaxTransfer)
	}
	if off < 0 || uint64(off)+uint64(n) > v.cfg.Size() {
		return fmt.Errorf("%w: [%d, %d)", jbod.ErrOutOfRange, off, off+int64(n))
	}
	return nil
}

// chunk is the part of a transfer that falls within one block.
type chunk struct {
	jbod.Location
	size int
}

func (v *Volume) nextChunk(off int64, remaining int) chunk {
	loc := v.cfg.Locate(uint64(off))
	size := int(v.cfg.BlockSize - loc.Offset)
	if remaining < size {
		size = remaining
	}
	return chunk{Location: loc, size: size}
}

func (v *Volume) seek(ctx context.Context, ref jbod.BlockRef) error {
	if err := v.dev.Execute(ctx, jbod.SeekDiskOp(ref.Disk), nil); err != nil {
		return err
	}
	return v.dev.Execute(ctx, jbod.SeekBlockOp(ref.Block), nil)
}

func (v *Volume) readBlock(ctx context.Context, ref jbod.BlockRef, blk []byte) error {
	if err := v.seek(ctx, ref); err != nil {
		return err
	}
	return v.dev.Execute(ctx, jbod.ReadBlockOp(), blk)
}

func (v *Volume) cacheInsert(ref jbod.BlockRef, blk []byte) {
	if !v.cache.Enabled() {
		return
	}
	if _, err := v.cache.Insert(ref, blk); err != nil {
		clog.Warningf("couldn't cache %s: %v", ref, err)
	}
}

// ReadAt reads len(p) bytes starting at linear address off. On failure the
// bytes of chunks already read are left in p and counted in n.
func (v *Volume) ReadAt(p []byte, off int64) (n int, err error) {
	v.mut.Lock()
	defer v.mut.Unlock()
	if err := v.checkRange(len(p), off); err != nil {
		return 0, err
	}
	clog.Tracef("begin read of size %d at %d", len(p), off)
	promVolumeReads.Inc()
	defer func() {
		promVolumeBytesRead.Add(float64(n))
		if err != nil {
			promVolumeFailures.WithLabelValues("read").Inc()
		}
	}()

	ctx := context.TODO()
	blk := make([]byte, v.cfg.BlockSize)
	for n < len(p) {
		c := v.nextChunk(off+int64(n), len(p)-n)
		if v.cache.Enabled() && v.cache.Lookup(c.BlockRef, blk) {
			clog.Tracef("cache hit on %s", c.BlockRef)
		} else {
			clog.Tracef("reading %s", c.BlockRef)
			if err := v.readBlock(ctx, c.BlockRef, blk); err != nil {
				return n, err
			}
			v.cacheInsert(c.BlockRef, blk)
		}
		n += copy(p[n:n+c.size], blk[c.Offset:])
	}
	return n, nil
}

// WriteAt writes p starting at linear address off. Each block is read,
// merged and written back whole. On failure, blocks written by earlier
// chunks stay written and are counted in n.
func (v *Volume) WriteAt(p []byte, off int64) (n int, err error) {
	v.mut.Lock()
	defer v.mut.Unlock()
	if err := v.checkRange(len(p), off); err != nil {
		return 0, err
	}
	clog.Tracef("begin write of size %d at %d", len(p), off)
	promVolumeWrites.Inc()
	defer func() {
		promVolumeBytesWritten.Add(float64(n))
		if err != nil {
			promVolumeFailures.WithLabelValues("write").Inc()
		}
	}()

	ctx := context.TODO()
	blk := make([]byte, v.cfg.BlockSize)
	for n < len(p) {
		c := v.nextChunk(off+int64(n), len(p)-n)
		if v.cache.Enabled() && v.cache.Lookup(c.BlockRef, blk) {
			clog.Tracef("cache hit on %s", c.BlockRef)
		} else {
			// Read the block first so the bytes around the chunk survive.
			if err := v.readBlock(ctx, c.BlockRef, blk); err != nil {
				return n, err
			}
			v.cacheInsert(c.BlockRef, blk)
		}
		if err := v.seek(ctx, c.BlockRef); err != nil {
			return n, err
		}
		copy(blk[c.Offset:], p[n:n+c.size])
		if err := v.dev.Execute(ctx, jbod.WriteBlockOp(), blk); err != nil {
			return n, err
		}
		if v.cache.Enabled() {
			v.cache.Update(c.BlockRef, blk)
		}
		n += c.size
	}
	return n, nil
}
