package block

import (
	"bytes"
	"testing"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/protocol"
	"github.com/coreos/jbod/storage"
)

func TestVolumeOverNetwork(t *testing.T) {
	cfg := jbod.DefaultConfig()
	dev, err := storage.NewTemp("net", cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	srv, err := protocol.Serve("localhost:0", dev, int(cfg.BlockSize))
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	client, err := protocol.Dial(srv.ListenAddr().String(), int(cfg.BlockSize))
	if err != nil {
		t.Fatal(err)
	}
	defer client.Disconnect()

	cfg.CacheSize = 32
	v, err := NewVolume(cfg, client)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Mount(); err != nil {
		t.Fatal(err)
	}

	test := makeTestData(1024)
	for _, off := range []int64{0, 255, int64(cfg.DiskSize) - 512, int64(cfg.Size()) - 1024} {
		if n, err := v.WriteAt(test, off); n != len(test) || err != nil {
			t.Fatalf("write at %d: %d, %v", off, n, err)
		}
	}
	// Drop the cache so reads go over the wire.
	v.DestroyCache()
	buf := make([]byte, 1024)
	for _, off := range []int64{int64(cfg.Size()) - 1024, int64(cfg.DiskSize) - 512} {
		if _, err := v.ReadAt(buf, off); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf, test) {
			t.Fatalf("unequal read at %d", off)
		}
	}
	if err := v.Unmount(); err != nil {
		t.Fatal(err)
	}
	if dev.Mounted() {
		t.Fatal("unmount didn't reach the array")
	}
	if dev.UsedBlocks() == 0 {
		t.Fatal("no blocks reached the array")
	}
}
