package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"morphline/internal/logging"
	"morphline/pkg/pipeline"
)

var batchFlags struct {
	shapesPath string
	options    []string
	workers    int
	memoCost   int64
	fuse       bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <pipeline.yaml>",
	Short: "Run a pipeline concurrently over many shapes",
	Long: "Batch reads one shape JSON object per line and runs the pipeline\n" +
		"over each on a bounded worker pool. The pipeline is built once and\n" +
		"shared across workers; runs are independent. Results print in input\n" +
		"order, one JSON object per line.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.shapesPath, "shapes", "", "Path to JSON-lines shapes file (required)")
	f.StringArrayVar(&batchFlags.options, "opt", nil, "Run context option, key=value (repeatable)")
	f.IntVar(&batchFlags.workers, "workers", 4, "Concurrent runs")
	f.Int64Var(&batchFlags.memoCost, "memo-cost", 0, "Enable memoization with this cache budget (0 = off)")
	f.BoolVar(&batchFlags.fuse, "fuse", false, "Enable fusion of adjacent pure morphs")

	_ = batchCmd.MarkFlagRequired("shapes")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logging.New("batch")

	var opts []pipeline.BuildOption
	if batchFlags.fuse {
		opts = append(opts, pipeline.WithFusion())
	}
	if batchFlags.memoCost > 0 {
		cache, err := pipeline.NewMemoCache(batchFlags.memoCost)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts = append(opts, pipeline.WithMemo(cache))
	}

	p, err := buildPipeline(args[0], opts...)
	if err != nil {
		return err
	}
	rc, err := parseOptions(batchFlags.options)
	if err != nil {
		return err
	}
	shapes, err := readShapeLines(batchFlags.shapesPath)
	if err != nil {
		return err
	}

	results := make([]pipeline.Shape, len(shapes))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(batchFlags.workers)
	for i, s := range shapes {
		i, s := i, s
		g.Go(func() error {
			out, err := p.Run(ctx, s, rc)
			if err != nil {
				log.Error("run failed", "shape", s.ID, "error", err)
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("batch aborted: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, out := range results {
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func readShapeLines(path string) ([]pipeline.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapes: %w", err)
	}
	defer f.Close()

	var shapes []pipeline.Shape
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var s pipeline.Shape
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("decode shape %d: %w", len(shapes)+1, err)
		}
		shapes = append(shapes, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read shapes: %w", err)
	}
	return shapes, nil
}
