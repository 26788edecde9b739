package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInputContract marks a shape that fails a morph's declared
	// precondition (e.g. a required field is absent).
	ErrInputContract = errors.New("pipeline: shape violates input contract")

	// ErrContextConfig marks a run context that lacks a required option
	// or holds an invalid value for the morph being run.
	ErrContextConfig = errors.New("pipeline: invalid run context configuration")

	// ErrCancelled marks a run aborted by external cancellation or timeout.
	ErrCancelled = errors.New("pipeline: run cancelled")

	// ErrDuplicateMorph is returned by Build when two entries share a name.
	ErrDuplicateMorph = errors.New("pipeline: duplicate morph name")

	// ErrBuilderSealed is returned when a builder is mutated after Build.
	ErrBuilderSealed = errors.New("pipeline: builder already built")

	// ErrMorphNotFound is returned when a definition references a morph
	// absent from the registry it is resolved against.
	ErrMorphNotFound = errors.New("pipeline: morph not found in registry")
)

// InputContractErrorf builds an input-contract error for morph authors.
func InputContractErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInputContract, fmt.Sprintf(format, args...))
}

// ContextConfigErrorf builds a configuration error for morph authors.
func ContextConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContextConfig, fmt.Sprintf(format, args...))
}

// RunError annotates an error raised during a run with the identity of
// the pipeline, stage, and morph it originated from. Every error
// returned by Pipeline.Run is a *RunError; errors.Is and errors.As see
// through it to the cause.
type RunError struct {
	Pipeline string
	Stage    string
	Morph    string
	Err      error
}

func (e *RunError) Error() string {
	if e.Morph == "" {
		return fmt.Sprintf("pipeline %s: %v", e.Pipeline, e.Err)
	}
	return fmt.Sprintf("pipeline %s: stage %s: morph %s: %v", e.Pipeline, e.Stage, e.Morph, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
