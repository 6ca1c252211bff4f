package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gostonefire/exthashmap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name> <file>",
		Short: "Export all records to a compressed snapshot file",
		Long: `The export command writes every record of a hash map to a snappy compressed
snapshot file that can later be loaded with import.

Example:
  exthashctl export data/index index.snap`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.OutOrStdout(), args[0], args[1])
		},
	}
	return cmd
}

func runExport(w io.Writer, name, fileName string) (err error) {
	ehm, _, err := exthashmap.OpenRaw(name)
	if err != nil {
		return fmt.Errorf("failed to open hash map: %w", err)
	}
	defer ehm.CloseFiles()

	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close snapshot file: %w", cerr)
		}
	}()

	count, err := ehm.Export(f)
	if err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}

	fmt.Fprintf(w, "Exported %d records to %s\n", count, fileName)

	return nil
}
