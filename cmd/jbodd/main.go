package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/coreos/pkg/capnslog"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/internal/flagconfig"
	"github.com/coreos/jbod/internal/http"
	"github.com/coreos/jbod/protocol"

	// Register all the storage backends.
	_ "github.com/coreos/jbod/storage"
)

var (
	listenAddress string
	httpAddress   string
	kind          string
	name          string
	dataDir       string
	logpkg        string
	cfg           jbod.Config

	debug   bool
	version bool
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "jbodd")

var rootCommand = &cobra.Command{
	Use:    "jbodd",
	Short:  "Emulated JBOD array server",
	Long:   `Serves an emulated bank of disks over the jbod block protocol.`,
	PreRun: configureServer,
	Run:    runServer,
}

func init() {
	rootCommand.PersistentFlags().StringVarP(&listenAddress, "listen", "l", "localhost:3333", "Address to serve the block protocol on")
	rootCommand.PersistentFlags().StringVarP(&httpAddress, "http", "", "", "Address to serve /metrics and /status on")
	rootCommand.PersistentFlags().StringVarP(&kind, "kind", "", "temp", "Storage backend to emulate the array with")
	rootCommand.PersistentFlags().StringVarP(&name, "name", "", "jbod", "Name of the array; names the backing file")
	rootCommand.PersistentFlags().StringVarP(&dataDir, "data-dir", "", "", "Path to the data directory")
	rootCommand.PersistentFlags().BoolVarP(&debug, "debug", "", false, "Turn on debug output")
	rootCommand.PersistentFlags().StringVarP(&logpkg, "logpkg", "", "", "Specific package logging")
	rootCommand.PersistentFlags().BoolVarP(&version, "version", "", false, "Print version info and exit")
	flagconfig.AddConfigFlags(rootCommand.PersistentFlags())
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		die("%v", err)
	}
}

func die(why string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, why+"\n", args...)
	os.Exit(1)
}

func configureServer(cmd *cobra.Command, args []string) {
	if version {
		fmt.Printf("jbodd\nVersion: %s\n", jbod.Version)
		os.Exit(0)
	}
	switch {
	case debug:
		capnslog.SetGlobalLogLevel(capnslog.DEBUG)
	default:
		capnslog.SetGlobalLogLevel(capnslog.INFO)
	}
	if logpkg != "" {
		capnslog.SetGlobalLogLevel(capnslog.NOTICE)
		rl := capnslog.MustRepoLogger("github.com/coreos/jbod")
		llc, err := rl.ParseLogLevelConfig(logpkg)
		if err != nil {
			die("error parsing logpkg: %s", err)
		}
		rl.SetLogLevel(llc)
	}

	var err error
	cfg, err = flagconfig.BuildConfigFromFlags()
	if err != nil {
		die("invalid array geometry: %s", err)
	}
	if kind != "temp" && dataDir == "" {
		die("--data-dir is required for the %s backend", kind)
	}
}

// startArray opens the backend and serves it on listen. If serving fails
// the backend is closed before returning.
func startArray(kind, name string, cfg jbod.Config, dataDir, listen string) (jbod.DeviceCloser, *protocol.Server, error) {
	dev, err := jbod.CreateDevice(kind, name, cfg, dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't create %s array: %s (have %v)", kind, err, jbod.DeviceKinds())
	}
	srv, err := protocol.Serve(listen, dev, int(cfg.BlockSize))
	if err != nil {
		if cerr := dev.Close(); cerr != nil {
			clog.Errorf("couldn't close %s array: %s", kind, cerr)
		}
		return nil, nil, fmt.Errorf("couldn't listen on %s: %s", listen, err)
	}
	return dev, srv, nil
}

func runServer(cmd *cobra.Command, args []string) {
	dev, srv, err := startArray(kind, name, cfg, dataDir, listenAddress)
	if err != nil {
		die("%s", err)
	}
	// die exits without running deferred calls; backends must be closed
	// to flush.
	closeDev := func() {
		if err := dev.Close(); err != nil {
			clog.Errorf("couldn't close %s array: %s", kind, err)
		}
	}
	defer closeDev()
	defer srv.Close()
	clog.Infof("serving %d x %s %s array on %s", cfg.NumDisks, humanize.IBytes(cfg.DiskSize), kind, srv.ListenAddr())

	if httpAddress != "" {
		arr, ok := dev.(http.Array)
		if !ok {
			srv.Close()
			closeDev()
			die("%s array cannot report status", kind)
		}
		go func() {
			if err := http.ServeHTTP(httpAddress, arr); err != nil {
				clog.Errorf("http server: %s", err)
			}
		}()
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	<-signalChan
	fmt.Println("\nReceived an interrupt, stopping services...")
}
