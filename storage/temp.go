package storage

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/coreos/jbod"
)

func init() {
	jbod.RegisterDevice("temp", func(name string, cfg jbod.Config, _ string) (jbod.DeviceCloser, error) {
		return NewTemp(name, cfg)
	})
}

type tempBackend struct {
	store map[jbod.BlockRef][]byte
}

// NewTemp returns an array held entirely in memory.
func NewTemp(name string, cfg jbod.Config) (*Emulator, error) {
	return newEmulator(name, cfg, &tempBackend{
		store: make(map[jbod.BlockRef][]byte),
	})
}

func (t *tempBackend) kind() string { return "temp" }
func (t *tempBackend) flush() error { return nil }

func (t *tempBackend) readBlock(ref jbod.BlockRef, buf []byte) error {
	x, ok := t.store[ref]
	if !ok {
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}
	copy(buf, x)
	return nil
}

func (t *tempBackend) writeBlock(ref jbod.BlockRef, data []byte) error {
	x, ok := t.store[ref]
	if !ok {
		x = make([]byte, len(data))
		t.store[ref] = x
	}
	copy(x, data)
	return nil
}

func (t *tempBackend) written(*roaring.Bitmap) error { return nil }

func (t *tempBackend) close() error {
	t.store = nil
	return nil
}
