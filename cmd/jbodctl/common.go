package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/block"
	cli "github.com/coreos/jbod/cliconfig"
	"github.com/coreos/jbod/internal/flagconfig"
	"github.com/coreos/jbod/protocol"
)

func die(why string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, why+"\n", args...)
	os.Exit(1)
}

func configPath() string {
	if config != "" {
		return config
	}
	p, err := cli.DefaultPath()
	if err != nil {
		die("%v", err)
	}
	return p
}

// mustBuildConfig merges the selected profile under any flags given on the
// command line.
func mustBuildConfig(cmd *cobra.Command) jbod.Config {
	cfg, err := flagconfig.BuildConfigFromFlags()
	if err != nil {
		die("invalid array geometry: %v", err)
	}
	c, err := cli.Load(configPath())
	if err != nil {
		die("error loading config file: %v", err)
	}
	p, ok := c.Profiles[profile]
	if !ok {
		return cfg
	}
	if p.Server != "" && !cmd.Flag("server").Changed {
		serverAddress = p.Server
	}
	if p.CacheSize != 0 && !cmd.Flag("cache-size").Changed {
		cfg.CacheSize = p.CacheSize
		if err := cfg.Validate(); err != nil {
			die("profile %s: %v", profile, err)
		}
	}
	return cfg
}

// mustOpenVolume connects to the server and returns an unmounted volume
// over the connection.
func mustOpenVolume(cmd *cobra.Command) (*block.Volume, *protocol.Client) {
	cfg := mustBuildConfig(cmd)
	client, err := protocol.Dial(serverAddress, int(cfg.BlockSize))
	if err != nil {
		die("couldn't connect to %s: %v", serverAddress, err)
	}
	v, err := block.NewVolume(cfg, client)
	if err != nil {
		client.Close()
		die("%v", err)
	}
	return v, client
}

// withMounted runs f with v mounted for its duration.
func withMounted(v *block.Volume, f func() error) error {
	if err := v.Mount(); err != nil {
		return fmt.Errorf("couldn't mount: %v", err)
	}
	err := f()
	if uerr := v.Unmount(); uerr != nil && err == nil {
		err = fmt.Errorf("couldn't unmount: %v", uerr)
	}
	return err
}

func mustParseBytes(what, s string) uint64 {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		die("error parsing %s: %v", what, err)
	}
	return n
}

// checkSpan reports whether length bytes at addr fit in an array of size
// bytes, without overflowing on huge addresses.
func checkSpan(addr, length, size uint64) error {
	if length > size || addr > size-length {
		return fmt.Errorf("%d bytes at %d is past the end of the array (%d bytes)", length, addr, size)
	}
	return nil
}
