package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring"
	"github.com/edsrzf/mmap-go"

	"github.com/coreos/jbod"
)

func init() {
	jbod.RegisterDevice("mfile", func(name string, cfg jbod.Config, dataDir string) (jbod.DeviceCloser, error) {
		return OpenMFile(name, cfg, filepath.Join(dataDir, name+".img"))
	})
}

// mfileBackend lays the disks out back to back in one mmap'd image file.
type mfileBackend struct {
	mmap     mmap.MMap
	diskSize uint64
	blkSize  uint64
	size     uint64
}

// CreateMFile creates an image file of size bytes.
func CreateMFile(path string, size int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Truncate(size)
}

// OpenMFile opens the array image at path, creating it if it doesn't exist.
// An existing image must be exactly the size of the array.
func OpenMFile(name string, cfg jbod.Config, path string) (*Emulator, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := CreateMFile(path, int64(cfg.Size())); err != nil {
			return nil, fmt.Errorf("%w: %v", jbod.ErrResource, err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jbod.ErrResource, err)
	}
	// We don't need the file handle after we mmap it.
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if uint64(st.Size()) != cfg.Size() {
		return nil, fmt.Errorf("%w: image %s is %d bytes, array is %d", jbod.ErrOutOfRange, path, st.Size(), cfg.Size())
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jbod.ErrResource, err)
	}
	return newEmulator(name, cfg, &mfileBackend{
		mmap:     m,
		diskSize: cfg.DiskSize,
		blkSize:  cfg.BlockSize,
		size:     cfg.Size(),
	})
}

func (m *mfileBackend) kind() string { return "mfile" }

func (m *mfileBackend) offset(ref jbod.BlockRef) (uint64, error) {
	off := uint64(ref.Disk)*m.diskSize + uint64(ref.Block)*m.blkSize
	if off+m.blkSize > m.size {
		return 0, errors.New("storage: offset too large")
	}
	return off, nil
}

func (m *mfileBackend) readBlock(ref jbod.BlockRef, buf []byte) error {
	off, err := m.offset(ref)
	if err != nil {
		return err
	}
	copy(buf, m.mmap[off:off+m.blkSize])
	return nil
}

func (m *mfileBackend) writeBlock(ref jbod.BlockRef, data []byte) error {
	off, err := m.offset(ref)
	if err != nil {
		return err
	}
	copy(m.mmap[off:off+m.blkSize], data)
	return nil
}

// written leaves bm alone: the image doesn't record which blocks were ever
// written, so only writes made since opening are counted.
func (m *mfileBackend) written(*roaring.Bitmap) error { return nil }

func (m *mfileBackend) flush() error {
	return m.mmap.Flush()
}

func (m *mfileBackend) close() error {
	if err := m.mmap.Flush(); err != nil {
		return err
	}
	return m.mmap.Unmap()
}
