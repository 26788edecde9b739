package main

import (
	"github.com/spf13/cobra"

	"morphline/internal/logging"
	"morphline/pkg/pipeline"
)

var runFlags struct {
	shapePath string
	options   []string
	trace     bool
	fuse      bool
}

var runCmd = &cobra.Command{
	Use:   "run <pipeline.yaml>",
	Short: "Run a pipeline over one shape and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.shapePath, "shape", "", "Path to the input shape JSON (required)")
	f.StringArrayVar(&runFlags.options, "opt", nil, "Run context option, key=value (repeatable)")
	f.BoolVar(&runFlags.trace, "trace", false, "Log every morph execution")
	f.BoolVar(&runFlags.fuse, "fuse", false, "Enable fusion of adjacent pure morphs")

	_ = runCmd.MarkFlagRequired("shape")
}

func runRun(cmd *cobra.Command, args []string) error {
	var opts []pipeline.BuildOption
	if runFlags.trace {
		opts = append(opts, pipeline.WithObserver(&pipeline.LogObserver{Logger: logging.New("run")}))
	}
	if runFlags.fuse {
		opts = append(opts, pipeline.WithFusion())
	}

	p, err := buildPipeline(args[0], opts...)
	if err != nil {
		return err
	}
	shape, err := readShape(runFlags.shapePath)
	if err != nil {
		return err
	}
	rc, err := parseOptions(runFlags.options)
	if err != nil {
		return err
	}

	out, err := p.Run(cmd.Context(), shape, rc)
	if err != nil {
		return err
	}
	return printShape(out)
}
