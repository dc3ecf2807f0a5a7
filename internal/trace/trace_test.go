package trace

import (
	"strings"
	"testing"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/block"
	"github.com/coreos/jbod/storage"
)

const testTrace = `
# a small workload
MOUNT
WRITE 250 20 0x41
READ 250 20
WRITE 65530 12 7
READ 0 1024
READ 65530 12
MOUNT
READ 0 2000
UNMOUNT
`

func TestParse(t *testing.T) {
	cmds, err := Parse(strings.NewReader(testTrace))
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 9 {
		t.Fatalf("parsed %d commands", len(cmds))
	}
	w := cmds[1]
	if w.Kind != Write || w.Addr != 250 || w.Len != 20 || w.Fill != 'A' || w.Line != 4 {
		t.Fatalf("bad write %+v", w)
	}
	if cmds[8].Kind != Unmount {
		t.Fatalf("last command %v", cmds[8])
	}
}

func TestParseErrors(t *testing.T) {
	for _, bad := range []string{"FROB", "READ 1", "WRITE 1 2 300", "READ x 2", "READ 1 -2", "MOUNT now"} {
		if _, err := Parse(strings.NewReader(bad)); err == nil {
			t.Errorf("%q parsed", bad)
		}
	}
}

func TestReplay(t *testing.T) {
	cmds, err := Parse(strings.NewReader(testTrace))
	if err != nil {
		t.Fatal(err)
	}
	cfg := jbod.DefaultConfig()
	cfg.CacheSize = 8
	dev, _ := storage.NewTemp("trace", cfg)
	v, err := block.NewVolume(cfg, dev)
	if err != nil {
		t.Fatal(err)
	}
	res := Replay(v, cmds, true)
	// The second MOUNT and the oversized READ fail.
	if res.Failures != 2 {
		t.Fatalf("failures %d", res.Failures)
	}
	if res.Mismatches != 0 {
		t.Fatalf("mismatches %d", res.Mismatches)
	}
	if res.BytesWritten != 32 || res.BytesRead != 20+1024+12 {
		t.Fatalf("result %+v", res)
	}
	if v.Mounted() {
		t.Fatal("trace ends unmounted")
	}
}
