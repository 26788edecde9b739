package pipeline

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"
)

// LoadDefinition parses a YAML pipeline definition and validates its
// structure. Resolution against a registry happens separately in
// Definition.Build, so tooling can lint a definition without owning
// the morphs it references.
func LoadDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse pipeline definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Build resolves the definition against the registry and compiles it
// into an immutable Pipeline. Guard expressions are compiled once here;
// a guard that fails to compile is a build error, not a run error.
func (d *Definition) Build(reg *Registry, opts ...BuildOption) (*Pipeline, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := NewPipeline(d.Pipeline)
	for _, st := range d.Stages {
		b.Stage(st.Name, st.Description)
		for _, ref := range st.Morphs {
			m, ok := reg.Get(ref.Use)
			if !ok {
				return nil, fmt.Errorf("%w: %q in stage %s", ErrMorphNotFound, ref.Use, st.Name)
			}
			if ref.When == "" {
				b.Pipe(m)
				continue
			}
			guard, err := compileGuard(ref.When, d.Vars)
			if err != nil {
				return nil, fmt.Errorf("pipeline %s: stage %s: morph %s: %w", d.Pipeline, st.Name, ref.Use, err)
			}
			b.Conditionally(guard, m)
		}
		b.EndStage()
	}
	return b.Build(d.Meta(), opts...)
}

// compileGuard compiles a when: expression into a Predicate. The
// expression environment exposes the shape (id, fields, meta), the run
// context options as ctx, and the definition's vars. Expressions must
// produce a bool; an evaluation failure at run time counts as false,
// matching guard-skip semantics for absent optional inputs.
func compileGuard(src string, vars map[string]any) (Predicate, error) {
	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile guard %q: %w", src, err)
	}
	return func(s Shape, rc RunContext) bool {
		out, err := vm.Run(program, guardEnv(s, rc, vars))
		if err != nil {
			return false
		}
		b, ok := out.(bool)
		return ok && b
	}, nil
}

func guardEnv(s Shape, rc RunContext, vars map[string]any) map[string]any {
	ctx := make(map[string]any, len(rc.options))
	for k, v := range rc.options {
		ctx[k] = v
	}
	return map[string]any{
		"id":     s.ID,
		"fields": s.Fields,
		"meta":   s.Meta,
		"ctx":    ctx,
		"vars":   vars,
	}
}
