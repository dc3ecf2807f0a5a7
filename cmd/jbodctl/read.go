package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rawOutput bool

var readCommand = &cobra.Command{
	Use:   "read ADDR LEN",
	Short: "read LEN bytes from the array starting at ADDR",
	Long:  "reads LEN bytes at ADDR (K,KiB,etc suffixes accepted) and prints a hex dump",
	Run:   readAction,
}

func init() {
	readCommand.Flags().BoolVarP(&rawOutput, "raw", "r", false, "write the raw bytes to stdout instead")
}

func readAction(cmd *cobra.Command, args []string) {
	if len(args) != 2 {
		cmd.Usage()
		os.Exit(1)
	}
	addr := mustParseBytes("ADDR", args[0])
	length := mustParseBytes("LEN", args[1])

	v, client := mustOpenVolume(cmd)
	defer client.Close()
	if err := checkSpan(addr, length, v.Size()); err != nil {
		die("read of %v", err)
	}

	buf := make([]byte, length)
	err := withMounted(v, func() error {
		max := uint64(v.Config().MaxTransfer)
		for done := uint64(0); done < length; {
			n := length - done
			if n > max {
				n = max
			}
			if _, err := v.ReadAt(buf[done:done+n], int64(addr+done)); err != nil {
				return fmt.Errorf("read at %d: %v", addr+done, err)
			}
			done += n
		}
		return nil
	})
	if err != nil {
		die("%v", err)
	}
	if rawOutput {
		os.Stdout.Write(buf)
		return
	}
	fmt.Print(hex.Dump(buf))
}
