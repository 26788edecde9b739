// Package pipeline implements a composable shape-transformation engine.
// A pipeline is a named, immutable sequence of stages, each an ordered
// group of morphs — small transformation units carrying declared
// metadata about purity, fusibility, cost, and memoizability. Pipelines
// are built once and reused across arbitrarily many independent,
// concurrency-safe runs.
package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// TransformFunc is a morph's transformation: it receives a shape and the
// run context and returns the transformed shape or an error. The input
// shape must be treated as immutable; side effects are permitted only
// for morphs declared impure, and must be reflected in the returned
// value rather than external state.
type TransformFunc func(ctx context.Context, s Shape, rc RunContext) (Shape, error)

// Predicate guards a conditional morph. Predicates must be pure: same
// (shape, context) in, same answer out, no observable side effects.
type Predicate func(s Shape, rc RunContext) bool

// Metadata declares a morph's execution characteristics. The executor
// and the optional fusion and memoization passes rely on these
// declarations being honest; CheckPurity exists to probe them.
type Metadata struct {
	// Pure declares the transform deterministic and free of observable
	// side effects for structurally identical inputs.
	Pure bool
	// Fusible allows the fusion pass to compose this morph with an
	// adjacent pure, fusible neighbor into one execution step.
	Fusible bool
	// Cost is a relative, non-negative execution cost used for
	// diagnostics and as the memo cache admission weight.
	Cost float64
	// Memoizable opts the morph into output caching. Requires Pure.
	Memoizable bool
	// MemoKeys names the run-context options the transform actually
	// reads. They become part of the memo cache key; an empty list
	// keys on the shape alone.
	MemoKeys []string
	// Description is free-form, for introspection and tooling.
	Description string
}

// Morph is a single named transformation unit. Morphs are constructed
// once at setup time and shared freely; they hold no per-run state.
type Morph struct {
	name      string
	transform TransformFunc
	meta      Metadata
}

// NewMorph validates the metadata invariants and wraps the transform.
func NewMorph(name string, transform TransformFunc, meta Metadata) (*Morph, error) {
	if name == "" {
		return nil, fmt.Errorf("pipeline: morph name must not be empty")
	}
	if strings.ContainsAny(name, " \t\n") {
		return nil, fmt.Errorf("pipeline: morph name %q must not contain whitespace", name)
	}
	if transform == nil {
		return nil, fmt.Errorf("pipeline: morph %s: transform must not be nil", name)
	}
	if meta.Cost < 0 {
		return nil, fmt.Errorf("pipeline: morph %s: cost must be >= 0, got %v", name, meta.Cost)
	}
	if meta.Memoizable && !meta.Pure {
		return nil, fmt.Errorf("pipeline: morph %s: memoizable requires pure", name)
	}
	return &Morph{name: name, transform: transform, meta: meta}, nil
}

// MustMorph is NewMorph that panics on invalid metadata. Intended for
// package-level morph variables and test setup.
func MustMorph(name string, transform TransformFunc, meta Metadata) *Morph {
	m, err := NewMorph(name, transform, meta)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the morph's identifier, unique within a pipeline.
func (m *Morph) Name() string { return m.name }

// Metadata returns the morph's declared metadata.
func (m *Morph) Metadata() Metadata { return m.meta }

// Transform applies the morph. Callers outside the executor use this
// for direct unit testing of a single morph.
func (m *Morph) Transform(ctx context.Context, s Shape, rc RunContext) (Shape, error) {
	return m.transform(ctx, s, rc)
}
