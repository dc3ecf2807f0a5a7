package storage

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/RoaringBitmap/roaring"
	"github.com/boltdb/bolt"

	"github.com/coreos/jbod"
)

func init() {
	jbod.RegisterDevice("bolt", func(name string, cfg jbod.Config, dataDir string) (jbod.DeviceCloser, error) {
		return OpenBolt(name, cfg, filepath.Join(dataDir, name+".bolt"))
	})
}

// boltBackend keeps one bucket per disk, keyed by block number.
type boltBackend struct {
	db            *bolt.DB
	blocksPerDisk uint64
}

func diskBucket(disk int) []byte {
	return []byte(fmt.Sprintf("disk-%02d", disk))
}

func blockKey(block int) []byte {
	var k [2]byte
	binary.BigEndian.PutUint16(k[:], uint16(block))
	return k[:]
}

// OpenBolt opens, or creates, the array database at path.
func OpenBolt(name string, cfg jbod.Config, path string) (*Emulator, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jbod.ErrResource, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for d := 0; d < cfg.NumDisks; d++ {
			if _, err := tx.CreateBucketIfNotExists(diskBucket(d)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return newEmulator(name, cfg, &boltBackend{
		db:            db,
		blocksPerDisk: cfg.BlocksPerDisk(),
	})
}

func (b *boltBackend) kind() string { return "bolt" }

func (b *boltBackend) readBlock(ref jbod.BlockRef, buf []byte) error {
	return b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(diskBucket(ref.Disk)).Get(blockKey(ref.Block))
		if v == nil {
			for i := range buf {
				buf[i] = 0
			}
			return nil
		}
		copy(buf, v)
		return nil
	})
}

func (b *boltBackend) writeBlock(ref jbod.BlockRef, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		// Bolt may hold on to the value until the transaction commits.
		v := append([]byte(nil), data...)
		return tx.Bucket(diskBucket(ref.Disk)).Put(blockKey(ref.Block), v)
	})
}

func (b *boltBackend) written(bm *roaring.Bitmap) error {
	return b.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, bkt *bolt.Bucket) error {
			var disk int
			if _, err := fmt.Sscanf(string(name), "disk-%d", &disk); err != nil {
				return nil
			}
			return bkt.ForEach(func(k, _ []byte) error {
				block := uint64(binary.BigEndian.Uint16(k))
				bm.Add(uint32(uint64(disk)*b.blocksPerDisk + block))
				return nil
			})
		})
	})
}

func (b *boltBackend) flush() error {
	return b.db.Sync()
}

func (b *boltBackend) close() error {
	return b.db.Close()
}
