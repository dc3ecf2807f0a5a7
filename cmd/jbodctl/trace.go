package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/coreos/jbod/internal/trace"
)

var verify bool

var traceCommand = &cobra.Command{
	Use:   "trace FILE",
	Short: "replay a workload trace against the array",
	Long:  "replays MOUNT, UNMOUNT, READ and WRITE lines from FILE and prints statistics",
	Run:   traceAction,
}

func init() {
	traceCommand.Flags().BoolVarP(&verify, "verify", "", false, "check every read against what the trace wrote, assuming a zeroed array")
}

func traceAction(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		cmd.Usage()
		os.Exit(1)
	}
	f, err := os.Open(args[0])
	if err != nil {
		die("%v", err)
	}
	cmds, err := trace.Parse(f)
	f.Close()
	if err != nil {
		die("%v", err)
	}

	v, client := mustOpenVolume(cmd)
	defer client.Close()
	res := trace.Replay(v, cmds, verify)
	if v.Mounted() {
		if err := v.Unmount(); err != nil {
			fmt.Fprintf(os.Stderr, "couldn't unmount after trace: %v\n", err)
		}
	}

	hitRate := "n/a"
	if r := v.HitRate(); !math.IsNaN(r) {
		hitRate = fmt.Sprintf("%.1f%%", r*100)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Commands", "Failures", "Read", "Written", "Mismatches", "Cache Hit Rate"})
	table.Append([]string{
		strconv.Itoa(res.Commands),
		strconv.Itoa(res.Failures),
		humanize.IBytes(res.BytesRead),
		humanize.IBytes(res.BytesWritten),
		strconv.Itoa(res.Mismatches),
		hitRate,
	})
	table.Render()
	if res.Mismatches > 0 {
		os.Exit(1)
	}
}
