package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"morphline/pkg/pipeline"
	"morphline/pkg/textmorphs"
)

// loadDefinition reads and parses the pipeline definition named by the
// command's positional argument.
func loadDefinition(path string) (*pipeline.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return pipeline.LoadDefinition(data)
}

// buildPipeline resolves a definition against the builtin text-morph
// registry. Embedding morphline as a library, callers pass their own
// registry instead.
func buildPipeline(path string, opts ...pipeline.BuildOption) (*pipeline.Pipeline, error) {
	def, err := loadDefinition(path)
	if err != nil {
		return nil, err
	}
	return def.Build(textmorphs.Registry(), opts...)
}

// parseOptions converts repeated --opt k=v flags into a run context.
// Values parse as bool, int, or float when they look like one, else
// stay strings.
func parseOptions(kvs []string) (pipeline.RunContext, error) {
	options := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		key, raw, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return pipeline.RunContext{}, fmt.Errorf("option %q: want key=value", kv)
		}
		options[key] = parseScalar(raw)
	}
	return pipeline.NewRunContext(options), nil
}

func parseScalar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// readShape decodes one shape from a JSON file.
func readShape(path string) (pipeline.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Shape{}, fmt.Errorf("read shape: %w", err)
	}
	var s pipeline.Shape
	if err := json.Unmarshal(data, &s); err != nil {
		return pipeline.Shape{}, fmt.Errorf("decode shape: %w", err)
	}
	return s, nil
}

func printShape(s pipeline.Shape) error {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
