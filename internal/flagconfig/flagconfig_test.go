package flagconfig

import (
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/coreos/jbod"
)

func TestDefaults(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	AddConfigFlags(set)
	if err := set.Parse(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := BuildConfigFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != jbod.DefaultConfig() {
		t.Fatalf("got %+v", cfg)
	}
}

func TestParseSizes(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	AddConfigFlags(set)
	err := set.Parse([]string{"--block-size", "1KiB", "--disk-size", "64KiB", "--disks", "4", "--cache-size", "32"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := BuildConfigFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BlockSize != 1024 || cfg.DiskSize != 64*1024 || cfg.NumDisks != 4 || cfg.CacheSize != 32 {
		t.Fatalf("got %+v", cfg)
	}

	set = flag.NewFlagSet("test", flag.ContinueOnError)
	AddConfigFlags(set)
	set.Parse([]string{"--disk-size", "1000B"})
	if _, err := BuildConfigFromFlags(); err == nil {
		t.Fatal("disk size not a multiple of the block size was accepted")
	}
}
