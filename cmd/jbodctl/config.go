package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	cli "github.com/coreos/jbod/cliconfig"
)

var view bool

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Write config file for jbod commands",
	Long:  "stores --server and --cache-size under --profile in the config file",
	Run:   configAction,
}

func init() {
	configCommand.Flags().BoolVar(&view, "view", false, "view jbod configuration and exit")
}

func configAction(cmd *cobra.Command, args []string) {
	path := configPath()
	if view {
		bdata, err := ioutil.ReadFile(path)
		if err != nil {
			die("error reading config %s: %v", path, err)
		}
		fmt.Println(string(bdata))
		os.Exit(0)
	}

	c, err := cli.Load(path)
	if err != nil {
		die("error loading config file: %v", err)
	}
	cacheSize, err := cmd.Flags().GetInt("cache-size")
	if err != nil {
		die("%v", err)
	}
	c.Profiles[profile] = cli.Profile{
		Server:    serverAddress,
		CacheSize: cacheSize,
	}
	if err := c.Save(path); err != nil {
		die("error writing %s: %v", path, err)
	}
}
