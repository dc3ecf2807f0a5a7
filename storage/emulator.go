package storage

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/net/context"

	"github.com/coreos/jbod"
)

// backend stores whole blocks for an Emulator. Blocks never written read as
// zeros.
type backend interface {
	kind() string
	readBlock(ref jbod.BlockRef, buf []byte) error
	writeBlock(ref jbod.BlockRef, data []byte) error
	// written seeds bm with the blocks already holding data.
	written(bm *roaring.Bitmap) error
	flush() error
	close() error
}

var _ jbod.DeviceCloser = &Emulator{}

// Emulator is a local disk array. It tracks mount state and the current seek
// position, and executes device operations the way a physical array would.
type Emulator struct {
	mut     sync.Mutex
	name    string
	cfg     jbod.Config
	be      backend
	mounted bool
	cur     jbod.BlockRef
	used    *roaring.Bitmap
	closed  bool
}

func newEmulator(name string, cfg jbod.Config, be backend) (*Emulator, error) {
	e := &Emulator{
		name: name,
		cfg:  cfg,
		be:   be,
		used: roaring.NewBitmap(),
	}
	if err := be.written(e.used); err != nil {
		be.close()
		return nil, err
	}
	promBlocksAvail.WithLabelValues(name).Set(float64(uint64(cfg.NumDisks) * cfg.BlocksPerDisk()))
	promBlocks.WithLabelValues(name).Set(float64(e.used.GetCardinality()))
	promMounted.WithLabelValues(name).Set(0)
	promBytesPerBlock.Set(float64(cfg.BlockSize))
	return e, nil
}

func (e *Emulator) Kind() string { return e.be.kind() }

func (e *Emulator) Mounted() bool {
	e.mut.Lock()
	defer e.mut.Unlock()
	return e.mounted
}

// UsedBlocks is the number of distinct blocks that hold written data.
func (e *Emulator) UsedBlocks() uint64 {
	e.mut.Lock()
	defer e.mut.Unlock()
	return e.used.GetCardinality()
}

func (e *Emulator) NumBlocks() uint64 {
	return uint64(e.cfg.NumDisks) * e.cfg.BlocksPerDisk()
}

func (e *Emulator) index(ref jbod.BlockRef) uint32 {
	return uint32(uint64(ref.Disk)*e.cfg.BlocksPerDisk() + uint64(ref.Block))
}

func (e *Emulator) Execute(_ context.Context, op jbod.Op, block []byte) error {
	e.mut.Lock()
	defer e.mut.Unlock()
	err := e.execute(op, block)
	if err != nil {
		promOpsFailed.WithLabelValues(e.name).Inc()
	}
	return err
}

func (e *Emulator) execute(op jbod.Op, block []byte) error {
	if e.closed {
		return jbod.ErrClosed
	}
	switch op.Command {
	case jbod.CmdMount:
		if e.mounted {
			return jbod.ErrMounted
		}
		e.mounted = true
		e.cur = jbod.BlockRef{}
		promMounted.WithLabelValues(e.name).Set(1)
		clog.Infof("%s: mounted", e.name)
		return nil
	}

	if !e.mounted {
		return jbod.ErrNotMounted
	}
	switch op.Command {
	case jbod.CmdUnmount:
		e.mounted = false
		promMounted.WithLabelValues(e.name).Set(0)
		clog.Infof("%s: unmounted", e.name)
		return e.be.flush()
	case jbod.CmdSeekToDisk:
		if op.Disk < 0 || op.Disk >= e.cfg.NumDisks {
			return fmt.Errorf("%w: disk %d", jbod.ErrOutOfRange, op.Disk)
		}
		e.cur.Disk = op.Disk
		return nil
	case jbod.CmdSeekToBlock:
		if op.Block < 0 || uint64(op.Block) >= e.cfg.BlocksPerDisk() {
			return fmt.Errorf("%w: block %d", jbod.ErrOutOfRange, op.Block)
		}
		e.cur.Block = op.Block
		return nil
	case jbod.CmdReadBlock:
		if uint64(len(block)) != e.cfg.BlockSize {
			return jbod.ErrBadBlockSize
		}
		if err := e.be.readBlock(e.cur, block); err != nil {
			return err
		}
		promBlocksRetrieved.WithLabelValues(e.name).Inc()
		return nil
	case jbod.CmdWriteBlock:
		if uint64(len(block)) != e.cfg.BlockSize {
			return jbod.ErrBadBlockSize
		}
		if err := e.be.writeBlock(e.cur, block); err != nil {
			return err
		}
		e.used.Add(e.index(e.cur))
		promBlocksWritten.WithLabelValues(e.name).Inc()
		promBlocks.WithLabelValues(e.name).Set(float64(e.used.GetCardinality()))
		return nil
	}
	return fmt.Errorf("storage: unknown command %s", op.Command)
}

func (e *Emulator) Close() error {
	e.mut.Lock()
	defer e.mut.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.be.close()
}
