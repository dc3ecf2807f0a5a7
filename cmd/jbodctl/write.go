package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var inputFile string

var writeCommand = &cobra.Command{
	Use:   "write ADDR [DATA]",
	Short: "write DATA to the array starting at ADDR",
	Long:  "writes the bytes of DATA, or of --file (- for stdin), at ADDR",
	Run:   writeAction,
}

func init() {
	writeCommand.Flags().StringVarP(&inputFile, "file", "f", "", "read the data to write from a file")
}

func writeAction(cmd *cobra.Command, args []string) {
	var data []byte
	switch {
	case len(args) == 2 && inputFile == "":
		data = []byte(args[1])
	case len(args) == 1 && inputFile == "-":
		b, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			die("error reading stdin: %v", err)
		}
		data = b
	case len(args) == 1 && inputFile != "":
		b, err := ioutil.ReadFile(inputFile)
		if err != nil {
			die("error reading %s: %v", inputFile, err)
		}
		data = b
	default:
		cmd.Usage()
		os.Exit(1)
	}
	addr := mustParseBytes("ADDR", args[0])

	v, client := mustOpenVolume(cmd)
	defer client.Close()
	if err := checkSpan(addr, uint64(len(data)), v.Size()); err != nil {
		die("write of %v", err)
	}

	err := withMounted(v, func() error {
		max := v.Config().MaxTransfer
		for done := 0; done < len(data); {
			end := done + max
			if end > len(data) {
				end = len(data)
			}
			if _, err := v.WriteAt(data[done:end], int64(addr)+int64(done)); err != nil {
				return fmt.Errorf("write at %d: %v", addr+uint64(done), err)
			}
			done = end
		}
		return nil
	})
	if err != nil {
		die("%v", err)
	}
	fmt.Printf("wrote %s at %d\n", humanize.IBytes(uint64(len(data))), addr)
}
