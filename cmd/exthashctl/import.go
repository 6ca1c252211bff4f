package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gostonefire/exthashmap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <name> <file>",
		Short: "Import records from a snapshot file",
		Long: `The import command inserts every record of a snapshot file into an existing
hash map. Records already present are skipped. Key and value widths of the
snapshot must match the hash map.

Only hash maps using the internal hash function can be imported into, since
records must be routed with the same function that built the hash map.

Example:
  exthashctl import data/index index.snap`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), args[0], args[1])
		},
	}
	return cmd
}

func runImport(w io.Writer, name, fileName string) (err error) {
	ehm, info, err := exthashmap.OpenRaw(name)
	if err != nil {
		return fmt.Errorf("failed to open hash map: %w", err)
	}
	defer func() {
		if cerr := ehm.CloseFiles(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close hash map: %w", cerr)
		}
	}()

	if !info.InternalHash {
		return fmt.Errorf("hash map %s uses a custom hash function, import it through the library instead", name)
	}

	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	count, err := ehm.Import(f)
	if err != nil {
		return fmt.Errorf("failed to import records after %d records: %w", count, err)
	}

	fmt.Fprintf(w, "Imported %d records into %s\n", count, name)

	return nil
}
