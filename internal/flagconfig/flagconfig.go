// flagconfig is a generic set of flags dedicated to configuring the geometry
// of a disk array and the cache in front of it.
package flagconfig

import (
	"fmt"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/coreos/jbod"
)

var (
	blockSizeStr string
	diskSizeStr  string
	numDisks     int
	maxTransfer  int
	cacheSize    int
)

func AddConfigFlags(set *flag.FlagSet) {
	def := jbod.DefaultConfig()
	set.StringVarP(&blockSizeStr, "block-size", "", humanize.IBytes(def.BlockSize), "Size of a block on every disk")
	set.StringVarP(&diskSizeStr, "disk-size", "", humanize.IBytes(def.DiskSize), "Size of every disk in the array")
	set.IntVarP(&numDisks, "disks", "", def.NumDisks, "Number of disks in the array")
	set.IntVarP(&maxTransfer, "max-transfer", "", def.MaxTransfer, "Longest single read or write in bytes")
	set.IntVarP(&cacheSize, "cache-size", "", 0, "Number of blocks to cache; 0 disables the cache")
}

// BuildConfigFromFlags parses the flags added by AddConfigFlags into a
// validated configuration.
func BuildConfigFromFlags() (jbod.Config, error) {
	blockSize, err := humanize.ParseBytes(blockSizeStr)
	if err != nil {
		return jbod.Config{}, fmt.Errorf("error parsing block-size: %s", err)
	}
	diskSize, err := humanize.ParseBytes(diskSizeStr)
	if err != nil {
		return jbod.Config{}, fmt.Errorf("error parsing disk-size: %s", err)
	}
	cfg := jbod.Config{
		BlockSize:   blockSize,
		DiskSize:    diskSize,
		NumDisks:    numDisks,
		MaxTransfer: maxTransfer,
		CacheSize:   cacheSize,
	}
	return cfg, cfg.Validate()
}
