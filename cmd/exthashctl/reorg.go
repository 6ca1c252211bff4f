package main

import (
	"fmt"
	"io"

	"github.com/gostonefire/exthashmap"
	"github.com/spf13/cobra"
)

var (
	reorgRecordsPerBucket int
	reorgHashBits         uint8
	reorgKeyExtension     int64
	reorgValueExtension   int64
	reorgPrependKey       bool
	reorgPrependValue     bool
)

func init() {
	cmd := newReorgCmd()
	cmd.Flags().IntVar(&reorgRecordsPerBucket, "records-per-bucket", 0, "New number of records per bucket, 0 keeps the current")
	cmd.Flags().Uint8Var(&reorgHashBits, "hash-bits", 0, "New number of usable hash bits, 0 keeps the current")
	cmd.Flags().Int64Var(&reorgKeyExtension, "key-extension", 0, "Number of bytes to widen keys with")
	cmd.Flags().Int64Var(&reorgValueExtension, "value-extension", 0, "Number of bytes to widen values with")
	cmd.Flags().BoolVar(&reorgPrependKey, "prepend-key", false, "Put the key extension in front of the key")
	cmd.Flags().BoolVar(&reorgPrependValue, "prepend-value", false, "Put the value extension in front of the value")
	rootCmd.AddCommand(cmd)
}

func newReorgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorg <name>",
		Short: "Copy a hash map into a new file structure",
		Long: `The reorg command copies every record of a hash map into a new hash map named
<name>-reorg, using the internal hash function. Bucket capacity, hash bits and
key and value widths can be changed on the way. The original files are left
untouched.

Example:
  exthashctl reorg data/index --records-per-bucket 64
  exthashctl reorg data/index --value-extension 8 --prepend-value`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReorg(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func runReorg(w io.Writer, name string) error {
	reorgConf := exthashmap.ReorgConf{
		RecordsPerBucket:      reorgRecordsPerBucket,
		HashBits:              reorgHashBits,
		KeyExtension:          reorgKeyExtension,
		PrependKeyExtension:   reorgPrependKey,
		ValueExtension:        reorgValueExtension,
		PrependValueExtension: reorgPrependValue,
	}

	fromInfo, toInfo, err := exthashmap.Reorg(name, reorgConf)
	if err != nil {
		return fmt.Errorf("failed to reorganize hash map: %w", err)
	}

	fmt.Fprintf(w, "Reorganized %s into %s-reorg\n", name, name)
	fmt.Fprintf(w, "  Records per bucket: %d -> %d\n", fromInfo.RecordsPerBucket, toInfo.RecordsPerBucket)
	fmt.Fprintf(w, "  Key length:         %d -> %d\n", fromInfo.KeyLength, toInfo.KeyLength)
	fmt.Fprintf(w, "  Value length:       %d -> %d\n", fromInfo.ValueLength, toInfo.ValueLength)
	fmt.Fprintf(w, "  Global depth:       %d -> %d\n", fromInfo.GlobalDepth, toInfo.GlobalDepth)
	fmt.Fprintf(w, "  Buckets:            %d -> %d\n", fromInfo.NumberOfBuckets, toInfo.NumberOfBuckets)

	return nil
}
