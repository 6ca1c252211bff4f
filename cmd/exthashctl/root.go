package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "exthashctl",
	Short: "Inspect and maintain extendible hash map files",
	Long: `exthashctl works on the directory and bucket files of an extendible hash map.
Hash maps are given by name, the same name that was used when creating them, e.g.
"data/index" for the files data/index-dir.bin and data/index-bkt.bin.

Keys and values are handled as raw bytes sized from the file headers.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format where supported")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printJSON outputs v as indented JSON with map keys in sorted order
func printJSON(w io.Writer, v any) error {
	return json.MarshalWrite(w, v, jsontext.WithIndent("  "), jsontext.SpaceAfterColon(true), json.Deterministic(true))
}
