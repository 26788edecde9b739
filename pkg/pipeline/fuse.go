package pipeline

import (
	"context"
	"errors"
)

// step is one slot in the compiled execution program: a single morph,
// or several fused into one transform. Guarded steps carry their
// predicate; fused steps are never guarded and never memoizable.
type step struct {
	stage     string
	morphs    []*Morph // constituents, len > 1 only when fused
	guard     Predicate
	transform TransformFunc
	cost      float64
}

func (s step) name() string {
	if len(s.morphs) == 1 {
		return s.morphs[0].name
	}
	names := s.morphs[0].name
	for _, m := range s.morphs[1:] {
		names += "+" + m.name
	}
	return names
}

// compile flattens the stage list into the executor's step program.
// With fuse set, adjacent entries that are pure, fusible, unguarded,
// and not memoizable are composed into one step whose cost is the sum
// of its constituents. Fusion never crosses a stage boundary, a guard,
// or a memoizable morph, so skipping and cache lookups stay observable
// per morph.
func compile(stages []*Stage, fuse bool) []step {
	var program []step
	for _, st := range stages {
		for _, e := range st.entries {
			s := step{
				stage:     st.name,
				morphs:    []*Morph{e.morph},
				guard:     e.guard,
				transform: e.morph.transform,
				cost:      e.morph.meta.Cost,
			}
			if fuse && len(program) > 0 {
				prev := &program[len(program)-1]
				if canFuse(prev, s) {
					*prev = fuseSteps(*prev, s)
					continue
				}
			}
			program = append(program, s)
		}
	}
	return program
}

func canFuse(prev *step, next step) bool {
	if prev.stage != next.stage {
		return false
	}
	if prev.guard != nil || next.guard != nil {
		return false
	}
	for _, m := range append(prev.morphs, next.morphs...) {
		if !m.meta.Pure || !m.meta.Fusible || m.meta.Memoizable {
			return false
		}
	}
	return true
}

func fuseSteps(a, b step) step {
	first, second := a.transform, b.transform
	firstName, secondName := a.name(), b.name()
	return step{
		stage:  a.stage,
		morphs: append(append([]*Morph{}, a.morphs...), b.morphs...),
		cost:   a.cost + b.cost,
		transform: func(ctx context.Context, s Shape, rc RunContext) (Shape, error) {
			mid, err := first(ctx, s, rc)
			if err != nil {
				return Shape{}, tagMorph(err, firstName)
			}
			out, err := second(ctx, mid, rc)
			if err != nil {
				return Shape{}, tagMorph(err, secondName)
			}
			return out, nil
		},
	}
}

// fusedError pins an error from inside a fused step to the constituent
// morph that raised it, so run errors name the real origin rather than
// the composite step.
type fusedError struct {
	morph string
	err   error
}

func (e *fusedError) Error() string { return e.err.Error() }
func (e *fusedError) Unwrap() error { return e.err }

func tagMorph(err error, name string) error {
	var fe *fusedError
	if errors.As(err, &fe) {
		return err // already pinned by an inner fused step
	}
	return &fusedError{morph: name, err: err}
}
