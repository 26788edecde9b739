package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBuilder_ImplicitDefaultStage(t *testing.T) {
	p, err := NewPipeline("loose").
		Pipe(textMorph("a", strings.ToLower, Metadata{Pure: true})).
		Pipe(textMorph("b", strings.TrimSpace, Metadata{Pure: true})).
		Build(Meta{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	stages := p.Stages()
	if len(stages) != 1 {
		t.Fatalf("got %d stages, want 1", len(stages))
	}
	if stages[0].Name() != "default" {
		t.Errorf("stage name = %q, want default", stages[0].Name())
	}
	if got := len(stages[0].Morphs()); got != 2 {
		t.Errorf("default stage holds %d morphs, want 2", got)
	}
}

func TestBuilder_InterleavedImplicitSegmentsKeepOrder(t *testing.T) {
	p, err := NewPipeline("interleaved").
		Pipe(textMorph("a", strings.ToLower, Metadata{})).
		Stage("named").Pipe(textMorph("b", strings.TrimSpace, Metadata{})).EndStage().
		Pipe(textMorph("c", strings.ToUpper, Metadata{})).
		Build(Meta{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var names []string
	for _, m := range p.Morphs() {
		names = append(names, m.Name())
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", names, want)
		}
	}
}

func TestBuilder_NestedStageFails(t *testing.T) {
	_, err := NewPipeline("nested").
		Stage("outer").
		Stage("inner").
		Build(Meta{})
	if err == nil {
		t.Fatal("expected error for nested stage")
	}
}

func TestBuilder_EndStageWithoutOpenFails(t *testing.T) {
	_, err := NewPipeline("stray").EndStage().Build(Meta{})
	if err == nil {
		t.Fatal("expected error for stray EndStage")
	}
}

func TestBuilder_UnclosedStageFails(t *testing.T) {
	_, err := NewPipeline("open").
		Stage("dangling").Pipe(textMorph("a", strings.ToLower, Metadata{})).
		Build(Meta{})
	if err == nil {
		t.Fatal("expected error for unclosed stage")
	}
}

func TestBuilder_DuplicateMorphNameFails(t *testing.T) {
	_, err := NewPipeline("dup").
		Pipe(textMorph("same", strings.ToLower, Metadata{})).
		Pipe(textMorph("same", strings.ToUpper, Metadata{})).
		Build(Meta{})
	if !errors.Is(err, ErrDuplicateMorph) {
		t.Fatalf("err = %v, want ErrDuplicateMorph", err)
	}
}

func TestBuilder_SealedAfterBuild(t *testing.T) {
	b := NewPipeline("sealed").Pipe(textMorph("a", strings.ToLower, Metadata{Pure: true}))
	p, err := b.Build(Meta{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Mutation after Build must not reach the built pipeline.
	b.Pipe(textMorph("late", strings.ToUpper, Metadata{}))
	if got := len(p.Morphs()); got != 1 {
		t.Errorf("built pipeline has %d morphs after late Pipe, want 1", got)
	}

	if _, err := b.Build(Meta{}); !errors.Is(err, ErrBuilderSealed) {
		t.Errorf("second Build err = %v, want ErrBuilderSealed", err)
	}

	out, err := p.Run(context.Background(), textShape("ABC"), NewRunContext(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, _ := out.StringField("text"); got != "abc" {
		t.Errorf("text = %q, want abc", got)
	}
}

func TestBuilder_NilMorphFails(t *testing.T) {
	if _, err := NewPipeline("nil").Pipe(nil).Build(Meta{}); err == nil {
		t.Fatal("expected error for nil morph")
	}
	if _, err := NewPipeline("nilpred").Conditionally(nil, textMorph("a", strings.ToLower, Metadata{})).Build(Meta{}); err == nil {
		t.Fatal("expected error for nil predicate")
	}
}
