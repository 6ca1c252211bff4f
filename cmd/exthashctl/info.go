package main

import (
	"fmt"
	"io"

	"github.com/gostonefire/exthashmap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show header information of a hash map",
		Long: `The info command reads the file headers of a hash map and reports widths,
depths and file sizes. The bucket file is not scanned.

Example:
  exthashctl info data/index
  exthashctl info data/index --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func runInfo(w io.Writer, name string) error {
	info, err := exthashmap.ReadInfo(name)
	if err != nil {
		return fmt.Errorf("failed to read hash map info: %w", err)
	}

	if jsonOut {
		return printJSON(w, info)
	}

	hashName := "internal"
	if !info.InternalHash {
		hashName = "custom"
	}

	fmt.Fprintf(w, "Hash map: %s\n", name)
	fmt.Fprintf(w, "  Records per bucket: %d\n", info.RecordsPerBucket)
	fmt.Fprintf(w, "  Key length:         %d\n", info.KeyLength)
	fmt.Fprintf(w, "  Value length:       %d\n", info.ValueLength)
	fmt.Fprintf(w, "  Hash function:      %s\n", hashName)
	fmt.Fprintf(w, "  Hash bits:          %d\n", info.HashBits)
	fmt.Fprintf(w, "  Global depth:       %d\n", info.GlobalDepth)
	fmt.Fprintf(w, "  Buckets:            %d\n", info.NumberOfBuckets)
	fmt.Fprintf(w, "  Directory file:     %d bytes\n", info.DirectoryFileSize)
	fmt.Fprintf(w, "  Bucket file:        %d bytes\n", info.BucketFileSize)

	return nil
}
