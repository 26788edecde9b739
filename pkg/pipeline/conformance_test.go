package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestCheckPurity_PassesForHonestPureMorph(t *testing.T) {
	samples := []Shape{textShape("A"), textShape("  b  "), textShape("")}
	m := textMorph("lower", strings.ToLower, Metadata{Pure: true})
	if err := CheckPurity(m, samples, NewRunContext(nil)); err != nil {
		t.Errorf("CheckPurity: %v", err)
	}
}

func TestCheckPurity_DetectsClockReadingMorph(t *testing.T) {
	clk := clockwork.NewFakeClock()

	// Declared pure, but stamps the shape with a clock that ticks on
	// every read. The two conformance runs must diverge.
	liar := MustMorph("false-pure-stamp", func(_ context.Context, s Shape, _ RunContext) (Shape, error) {
		now := clk.Now()
		clk.Advance(time.Second)
		return s.SetMeta("stamped_at", now.Format(time.RFC3339Nano)), nil
	}, Metadata{Pure: true})

	err := CheckPurity(liar, []Shape{textShape("x")}, NewRunContext(nil))
	if err == nil {
		t.Fatal("CheckPurity accepted a clock-reading morph declared pure")
	}
	if !strings.Contains(err.Error(), "false-pure-stamp") {
		t.Errorf("violation does not name the morph: %v", err)
	}
}

func TestCheckPurity_DetectsDivergentErrors(t *testing.T) {
	var n int
	flaky := MustMorph("flaky", func(_ context.Context, s Shape, _ RunContext) (Shape, error) {
		n++
		if n%2 == 0 {
			return Shape{}, InputContractErrorf("second call only")
		}
		return s, nil
	}, Metadata{Pure: true})

	if err := CheckPurity(flaky, []Shape{textShape("x")}, NewRunContext(nil)); err == nil {
		t.Fatal("CheckPurity accepted a morph that errors nondeterministically")
	}
}

func TestCheckPurity_SkipsDeclaredImpure(t *testing.T) {
	clk := clockwork.NewFakeClock()
	honest := MustMorph("stamp", func(_ context.Context, s Shape, _ RunContext) (Shape, error) {
		now := clk.Now()
		clk.Advance(time.Second)
		return s.SetMeta("stamped_at", now.Format(time.RFC3339Nano)), nil
	}, Metadata{Pure: false})

	if err := CheckPurity(honest, []Shape{textShape("x")}, NewRunContext(nil)); err != nil {
		t.Errorf("impure morph must pass vacuously, got: %v", err)
	}
}

func TestCheckGuard_DetectsFlappingPredicate(t *testing.T) {
	var n int
	flapping := func(Shape, RunContext) bool {
		n++
		return n%2 == 0
	}
	if err := CheckGuard("flapping", flapping, []Shape{textShape("x")}, NewRunContext(nil)); err == nil {
		t.Fatal("CheckGuard accepted a nondeterministic predicate")
	}

	steady := func(s Shape, _ RunContext) bool {
		text, _ := s.StringField("text")
		return text != ""
	}
	if err := CheckGuard("steady", steady, []Shape{textShape("x"), textShape("")}, NewRunContext(nil)); err != nil {
		t.Errorf("CheckGuard rejected a pure predicate: %v", err)
	}
}
