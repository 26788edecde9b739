package pipeline

// Meta is pipeline-level metadata, introspectable without executing
// anything. Requires lists run-context options that must be present
// before any morph runs; a missing option fails the run up front with
// a configuration error.
type Meta struct {
	Description string
	Category    string
	Tags        []string
	InputType   string
	OutputType  string
	Requires    []string
}

// Pipeline is an immutable, reusable sequence of stages. A built
// pipeline holds no per-run state, so concurrent Run calls on one
// pipeline are independent and safe; the only shared mutable component
// is the optional memo cache, which is concurrency-safe itself.
type Pipeline struct {
	name    string
	stages  []*Stage
	meta    Meta
	program []step

	fuse     bool
	memo     *MemoCache
	observer RunObserver
}

// BuildOption configures a Pipeline during Build.
type BuildOption func(*Pipeline)

// WithFusion enables the fusion pass: adjacent pure, fusible, unguarded
// morphs are composed into single execution steps. Strictly a
// performance concern; observed results are identical to the unfused
// pipeline.
func WithFusion() BuildOption {
	return func(p *Pipeline) { p.fuse = true }
}

// WithMemo attaches a shared memoization cache. Only morphs declared
// Memoizable participate. The cache may be shared across pipelines.
func WithMemo(cache *MemoCache) BuildOption {
	return func(p *Pipeline) { p.memo = cache }
}

// WithObserver attaches an observer receiving run events. Compose
// several with MultiObserver.
func WithObserver(obs RunObserver) BuildOption {
	return func(p *Pipeline) { p.observer = obs }
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Meta returns the pipeline-level metadata.
func (p *Pipeline) Meta() Meta { return p.meta }

// Stages returns the pipeline's stages in declared order.
func (p *Pipeline) Stages() []*Stage { return p.stages }

// Morphs returns every morph in the pipeline in execution order.
func (p *Pipeline) Morphs() []*Morph {
	var out []*Morph
	for _, st := range p.stages {
		out = append(out, st.Morphs()...)
	}
	return out
}
