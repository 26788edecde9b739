package pipeline

import "fmt"

// Builder accumulates stages and morphs and finalizes them into an
// immutable Pipeline. Methods chain; the first construction error is
// recorded and reported by Build. After Build succeeds the builder is
// sealed: further mutation has no effect on the produced pipeline and
// any later Build fails.
type Builder struct {
	name     string
	stages   []*Stage
	open     *Stage // explicitly opened stage, nil outside stage/endStage
	implicit bool   // the trailing stage is an implicit default segment
	sealed   bool
	err      error
}

// NewPipeline starts a builder for a pipeline with the given name.
func NewPipeline(name string) *Builder {
	return &Builder{name: name}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Pipe appends a morph to the currently open stage, or to an implicit
// default stage when none is open.
func (b *Builder) Pipe(m *Morph) *Builder {
	return b.append(m, nil)
}

// Conditionally appends a predicate-guarded morph. At run time the
// morph executes only when the predicate is true for the current
// (shape, context); otherwise the entry is identity.
func (b *Builder) Conditionally(pred Predicate, m *Morph) *Builder {
	if pred == nil {
		return b.fail(fmt.Errorf("pipeline %s: nil predicate for morph %s", b.name, morphName(m)))
	}
	return b.append(m, pred)
}

func (b *Builder) append(m *Morph, guard Predicate) *Builder {
	if b.sealed {
		return b.fail(fmt.Errorf("%w: %s", ErrBuilderSealed, b.name))
	}
	if m == nil {
		return b.fail(fmt.Errorf("pipeline %s: nil morph", b.name))
	}
	target := b.open
	if target == nil {
		if b.implicit {
			target = b.stages[len(b.stages)-1]
		} else {
			target = &Stage{name: defaultStageName(len(b.stages))}
			b.stages = append(b.stages, target)
			b.implicit = true
		}
	}
	target.entries = append(target.entries, entry{morph: m, guard: guard})
	return b
}

// Stage opens a named stage scope. Stages are flat: opening a stage
// while another is open is a construction error.
func (b *Builder) Stage(name string, description ...string) *Builder {
	if b.sealed {
		return b.fail(fmt.Errorf("%w: %s", ErrBuilderSealed, b.name))
	}
	if b.open != nil {
		return b.fail(fmt.Errorf("pipeline %s: stage %q opened while %q is still open", b.name, name, b.open.name))
	}
	if name == "" {
		return b.fail(fmt.Errorf("pipeline %s: stage name must not be empty", b.name))
	}
	st := &Stage{name: name}
	if len(description) > 0 {
		st.description = description[0]
	}
	b.stages = append(b.stages, st)
	b.open = st
	b.implicit = false
	return b
}

// EndStage closes the open stage scope.
func (b *Builder) EndStage() *Builder {
	if b.sealed {
		return b.fail(fmt.Errorf("%w: %s", ErrBuilderSealed, b.name))
	}
	if b.open == nil {
		return b.fail(fmt.Errorf("pipeline %s: EndStage without an open stage", b.name))
	}
	b.open = nil
	return b
}

// Build freezes the accumulated stages into an immutable Pipeline.
// Morph names must be unique within the pipeline; stage names likewise.
// Building with zero morphs is legal and yields an identity pipeline.
func (b *Builder) Build(meta Meta, opts ...BuildOption) (*Pipeline, error) {
	if b.sealed {
		return nil, fmt.Errorf("%w: %s", ErrBuilderSealed, b.name)
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.open != nil {
		return nil, fmt.Errorf("pipeline %s: stage %q left open at Build", b.name, b.open.name)
	}

	morphNames := make(map[string]string) // morph -> stage, for the duplicate diagnostic
	stageNames := make(map[string]bool)
	for _, st := range b.stages {
		if stageNames[st.name] {
			return nil, fmt.Errorf("pipeline %s: duplicate stage name %q", b.name, st.name)
		}
		stageNames[st.name] = true
		for _, e := range st.entries {
			if prev, ok := morphNames[e.morph.name]; ok {
				return nil, fmt.Errorf("%w: %s in stages %s and %s", ErrDuplicateMorph, e.morph.name, prev, st.name)
			}
			morphNames[e.morph.name] = st.name
		}
	}

	p := &Pipeline{name: b.name, stages: b.stages, meta: meta}
	for _, opt := range opts {
		opt(p)
	}
	p.program = compile(p.stages, p.fuse)

	b.sealed = true
	b.stages = nil // the pipeline owns the stages now; the builder is inert
	return p, nil
}

func defaultStageName(n int) string {
	if n == 0 {
		return "default"
	}
	return fmt.Sprintf("default-%d", n+1)
}

func morphName(m *Morph) string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}
