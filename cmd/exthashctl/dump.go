package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/btree"
	"github.com/gostonefire/exthashmap"
	"github.com/spf13/cobra"
)

var (
	dumpSorted bool
	dumpLimit  int
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpSorted, "sorted", false, "List records ordered by key instead of the bucket layout")
	cmd.Flags().IntVar(&dumpLimit, "limit", 0, "Maximum number of records to list with --sorted, 0 lists all")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <name>",
		Short: "Print the directory and buckets of a hash map",
		Long: `The dump command prints the directory pointers followed by every bucket with
its local depth and records. With --sorted the records are instead listed in
key order, one per line as hex encoded key and value.

Example:
  exthashctl dump data/index
  exthashctl dump data/index --sorted --limit 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

// rawRecord - A key value pair as stored in the bucket file
type rawRecord struct {
	key   []byte
	value []byte
}

func lessRawRecord(a, b rawRecord) bool {
	if c := bytes.Compare(a.key, b.key); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.value, b.value) < 0
}

func runDump(w io.Writer, name string) error {
	if dumpLimit < 0 {
		return fmt.Errorf("limit can not be negative")
	}

	ehm, _, err := exthashmap.OpenRaw(name)
	if err != nil {
		return fmt.Errorf("failed to open hash map: %w", err)
	}
	defer ehm.CloseFiles()

	if !dumpSorted {
		return ehm.Dump(w)
	}

	records := btree.NewG(32, lessRawRecord)
	err = ehm.Traverse(func(key, value []byte) bool {
		records.ReplaceOrInsert(rawRecord{key: key, value: value})
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to traverse hash map: %w", err)
	}

	n := 0
	records.Ascend(func(record rawRecord) bool {
		fmt.Fprintf(w, "%x: %x\n", record.key, record.value)
		n++
		return dumpLimit == 0 || n < dumpLimit
	})

	return nil
}
