package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/gostonefire/exthashmap"
	"github.com/spf13/cobra"
)

var (
	statDistribution bool
)

func init() {
	cmd := newStatCmd()
	cmd.Flags().BoolVar(&statDistribution, "distribution", false, "Include the number of records in each bucket")
	rootCmd.AddCommand(cmd)
}

func newStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <name>",
		Short: "Show usage statistics of a hash map",
		Long: `The stat command scans every bucket of a hash map and reports the number of
records, the average fill factor and a histogram over local depths.

Example:
  exthashctl stat data/index
  exthashctl stat data/index --distribution --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func runStat(w io.Writer, name string) error {
	ehm, _, err := exthashmap.OpenRaw(name)
	if err != nil {
		return fmt.Errorf("failed to open hash map: %w", err)
	}
	defer ehm.CloseFiles()

	stat, err := ehm.Stat(statDistribution)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if jsonOut {
		return printJSON(w, stat)
	}

	fmt.Fprintf(w, "Hash map: %s\n", name)
	fmt.Fprintf(w, "  Records:      %d\n", stat.Records)
	fmt.Fprintf(w, "  Buckets:      %d\n", stat.Buckets)
	fmt.Fprintf(w, "  Global depth: %d\n", stat.GlobalDepth)
	fmt.Fprintf(w, "  Fill factor:  %.3f\n", stat.AverageFillFactor)

	fmt.Fprintf(w, "\nLocal depths:\n")
	depths := make([]uint8, 0, len(stat.LocalDepthHistogram))
	for depth := range stat.LocalDepthHistogram {
		depths = append(depths, depth)
	}
	slices.Sort(depths)
	for _, depth := range depths {
		fmt.Fprintf(w, "  %3d: %d\n", depth, stat.LocalDepthHistogram[depth])
	}

	if statDistribution {
		fmt.Fprintf(w, "\nRecords per bucket:\n")
		for i, n := range stat.BucketDistribution {
			fmt.Fprintf(w, "  %6d: %d\n", i, n)
		}
	}

	return nil
}
