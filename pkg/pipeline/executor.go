package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Run threads the shape through every non-skipped morph in declared
// order and returns the result. Execution is strictly sequential: a
// morph completes before the next begins. The first error aborts the
// run and is returned as a *RunError naming the originating stage and
// morph; no partial result is ever returned. Cancellation is checked
// only at morph boundaries.
func (p *Pipeline) Run(ctx context.Context, s Shape, rc RunContext) (Shape, error) {
	if err := p.checkRequires(rc); err != nil {
		runErr := &RunError{Pipeline: p.name, Err: err}
		p.emit(RunEvent{Type: EventRunError, Pipeline: p.name, Error: runErr})
		return Shape{}, runErr
	}

	p.emit(RunEvent{Type: EventRunStart, Pipeline: p.name})
	start := time.Now()

	// The run owns its own copy; morphs never see the caller's maps.
	current := s.Clone()

	for _, st := range p.program {
		if err := ctx.Err(); err != nil {
			return Shape{}, p.abort(st, fmt.Errorf("%w: before morph %s: %v", ErrCancelled, st.name(), err))
		}
		if st.guard != nil && !st.guard(current, rc) {
			p.emit(RunEvent{Type: EventMorphSkip, Pipeline: p.name, Stage: st.stage, Morph: st.name()})
			continue
		}

		p.emit(RunEvent{Type: EventMorphStart, Pipeline: p.name, Stage: st.stage, Morph: st.name()})
		morphStart := time.Now()

		next, hit, err := p.execStep(ctx, st, current, rc)
		if err != nil {
			return Shape{}, p.abort(st, err)
		}
		if hit {
			p.emit(RunEvent{Type: EventMemoHit, Pipeline: p.name, Stage: st.stage, Morph: st.name()})
		}
		current = next
		p.emit(RunEvent{
			Type:     EventMorphDone,
			Pipeline: p.name,
			Stage:    st.stage,
			Morph:    st.name(),
			Elapsed:  time.Since(morphStart),
		})
	}

	p.emit(RunEvent{Type: EventRunComplete, Pipeline: p.name, Elapsed: time.Since(start)})
	return current, nil
}

// Apply is an alias for Run.
func (p *Pipeline) Apply(ctx context.Context, s Shape, rc RunContext) (Shape, error) {
	return p.Run(ctx, s, rc)
}

// execStep runs one compiled step, consulting the memo cache when the
// step's single morph is memoizable. The hit return reports a cache hit.
func (p *Pipeline) execStep(ctx context.Context, st step, s Shape, rc RunContext) (Shape, bool, error) {
	if p.memo != nil && len(st.morphs) == 1 && st.morphs[0].meta.Memoizable {
		return p.memo.through(ctx, st.morphs[0], s, rc)
	}
	out, err := st.transform(ctx, s, rc)
	return out, false, err
}

func (p *Pipeline) abort(st step, err error) *RunError {
	morph := st.name()
	var fe *fusedError
	if errors.As(err, &fe) {
		morph, err = fe.morph, fe.err
	}
	runErr := &RunError{Pipeline: p.name, Stage: st.stage, Morph: morph, Err: err}
	p.emit(RunEvent{Type: EventRunError, Pipeline: p.name, Stage: st.stage, Morph: morph, Error: runErr})
	return runErr
}

func (p *Pipeline) checkRequires(rc RunContext) error {
	for _, key := range p.meta.Requires {
		if !rc.Has(key) {
			return ContextConfigErrorf("required option %q absent", key)
		}
	}
	return nil
}

func (p *Pipeline) emit(e RunEvent) {
	if p.observer != nil {
		p.observer.OnEvent(e)
	}
}
