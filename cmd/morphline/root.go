// morphline is the pipeline tooling CLI: lint and describe declarative
// pipeline definitions, and run them over shapes from the command line.
//
// Usage:
//
//	morphline lint <pipeline.yaml>
//	morphline describe <pipeline.yaml> [--format markdown]
//	morphline run <pipeline.yaml> --shape <shape.json> [--opt k=v ...]
//	morphline batch <pipeline.yaml> --shapes <shapes.jsonl> [--workers N]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"morphline/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "morphline",
	Short: "Composable shape-transformation pipelines",
	Long:  "Morphline builds and runs named transformation pipelines over\nstructured shapes, defined in Go or declaratively in YAML.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(parseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "console", "Log format: text, json, console")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.Version = version
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
