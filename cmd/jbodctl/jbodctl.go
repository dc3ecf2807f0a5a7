package main

import (
	"fmt"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/internal/flagconfig"
)

var (
	serverAddress string
	config        string
	profile       string
	debug         bool
)

var rootCommand = &cobra.Command{
	Use:              "jbodctl",
	Short:            "Read and write a remote JBOD array",
	Long:             `Client utility for a JBOD array served over the jbod block protocol.`,
	PersistentPreRun: configure,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Usage()
		os.Exit(1)
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jbodctl\nVersion: %s\n", jbod.Version)
		os.Exit(0)
	},
}

func init() {
	rootCommand.PersistentFlags().StringVarP(&serverAddress, "server", "s", "localhost:3333", "host:port of the array server")
	rootCommand.PersistentFlags().StringVarP(&config, "config", "", "", "path to jbod config file")
	rootCommand.PersistentFlags().StringVarP(&profile, "profile", "", "default", "profile to use in cli config file")
	rootCommand.PersistentFlags().BoolVarP(&debug, "debug", "", false, "enable debug logging")
	flagconfig.AddConfigFlags(rootCommand.PersistentFlags())
	rootCommand.AddCommand(configCommand)
	rootCommand.AddCommand(readCommand)
	rootCommand.AddCommand(writeCommand)
	rootCommand.AddCommand(traceCommand)
	rootCommand.AddCommand(versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		die("%v", err)
	}
}

func configure(cmd *cobra.Command, args []string) {
	capnslog.SetGlobalLogLevel(capnslog.WARNING)

	if debug {
		capnslog.SetGlobalLogLevel(capnslog.DEBUG)
	}
}
