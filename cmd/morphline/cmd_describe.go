package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"morphline/internal/format"
)

var describeFlags struct {
	format string
}

var describeCmd = &cobra.Command{
	Use:   "describe <pipeline.yaml>",
	Short: "Show a pipeline's metadata and morphs without running anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&describeFlags.format, "format", "ascii", "Output format: ascii or markdown")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(args[0])
	if err != nil {
		return err
	}
	mode := format.ParseMode(describeFlags.format)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, format.PipelineTable(p, mode))
	fmt.Fprintln(out)
	fmt.Fprintln(out, format.MorphTable(p, mode))
	return nil
}
