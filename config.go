package jbod

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	// MaxDisks is the number of disks addressable by the 4-bit disk field of
	// an opcode.
	MaxDisks = 1 << 4
	// MaxBlocksPerDisk is the number of blocks addressable by the 8-bit block
	// field of an opcode.
	MaxBlocksPerDisk = 1 << 8

	// MaxBlockSize is the largest block a packet can carry: the 16-bit
	// length field covers the 8 byte header plus the block.
	MaxBlockSize = 0xFFFF - 8

	MinCacheSize = 2
	MaxCacheSize = 4096
)

// Config describes the geometry of a disk array and the knobs of the layers
// in front of it.
type Config struct {
	BlockSize   uint64
	DiskSize    uint64
	NumDisks    int
	MaxTransfer int

	// CacheSize is the number of cache entries to create when a volume is
	// opened. Zero leaves the volume uncached.
	CacheSize int
}

// DefaultConfig returns the geometry of a 16 disk array of 256 blocks of 256
// bytes each.
func DefaultConfig() Config {
	return Config{
		BlockSize:   256,
		DiskSize:    256 * 256,
		NumDisks:    16,
		MaxTransfer: 1024,
	}
}

func (c Config) Validate() error {
	if c.BlockSize == 0 {
		return fmt.Errorf("%w: block size must be positive", ErrOutOfRange)
	}
	if c.BlockSize > MaxBlockSize {
		return fmt.Errorf("%w: block size %s, at most %d bytes fit in a packet",
			ErrOutOfRange, humanize.IBytes(c.BlockSize), MaxBlockSize)
	}
	if c.DiskSize == 0 || c.DiskSize%c.BlockSize != 0 {
		return fmt.Errorf("%w: disk size %s is not a multiple of block size %s",
			ErrOutOfRange, humanize.IBytes(c.DiskSize), humanize.IBytes(c.BlockSize))
	}
	if c.BlocksPerDisk() > MaxBlocksPerDisk {
		return fmt.Errorf("%w: %d blocks per disk, at most %d are addressable",
			ErrOutOfRange, c.BlocksPerDisk(), MaxBlocksPerDisk)
	}
	if c.NumDisks < 1 || c.NumDisks > MaxDisks {
		return fmt.Errorf("%w: %d disks, want 1 to %d", ErrOutOfRange, c.NumDisks, MaxDisks)
	}
	if c.MaxTransfer <= 0 {
		return fmt.Errorf("%w: max transfer must be positive", ErrOutOfRange)
	}
	if c.CacheSize != 0 && (c.CacheSize < MinCacheSize || c.CacheSize > MaxCacheSize) {
		return fmt.Errorf("%w: cache size %d", ErrBadCapacity, c.CacheSize)
	}
	return nil
}

// Size is the total size of the linear address space in bytes.
func (c Config) Size() uint64 {
	return uint64(c.NumDisks) * c.DiskSize
}

func (c Config) BlocksPerDisk() uint64 {
	return c.DiskSize / c.BlockSize
}

// Location is a linear address resolved to its place on the array.
type Location struct {
	BlockRef
	Offset uint64
}

// Locate maps a linear address onto a disk, a block within it, and an offset
// within that block.
func (c Config) Locate(addr uint64) Location {
	return Location{
		BlockRef: BlockRef{
			Disk:  int(addr / c.DiskSize),
			Block: int((addr % c.DiskSize) / c.BlockSize),
		},
		Offset: addr % c.BlockSize,
	}
}

// Contains reports whether ref names a block inside the array.
func (c Config) Contains(ref BlockRef) bool {
	return ref.Disk >= 0 && ref.Disk < c.NumDisks &&
		ref.Block >= 0 && uint64(ref.Block) < c.BlocksPerDisk()
}
