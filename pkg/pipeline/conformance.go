package pipeline

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// CheckPurity probes a morph's declared purity: for each sample shape
// the transform runs twice on independent clones, and the outputs must
// be structurally identical. A morph declared pure that consults a
// clock, counter, or other external input diverges here. Morphs
// declared impure pass vacuously. Transform errors are reported as
// check failures since a pure morph must fail deterministically too —
// both runs must agree on error-or-value.
func CheckPurity(m *Morph, samples []Shape, rc RunContext) error {
	if !m.meta.Pure {
		return nil
	}
	ctx := context.Background()
	for i, s := range samples {
		first, errFirst := m.transform(ctx, s.Clone(), rc)
		second, errSecond := m.transform(ctx, s.Clone(), rc)

		if (errFirst == nil) != (errSecond == nil) {
			return fmt.Errorf("morph %s declared pure but sample %d diverged: first err=%v, second err=%v",
				m.name, i, errFirst, errSecond)
		}
		if errFirst != nil {
			if errFirst.Error() != errSecond.Error() {
				return fmt.Errorf("morph %s declared pure but sample %d errors diverged: %q vs %q",
					m.name, i, errFirst, errSecond)
			}
			continue
		}
		if diff := cmp.Diff(first, second); diff != "" {
			return fmt.Errorf("morph %s declared pure but sample %d outputs diverged (-first +second):\n%s",
				m.name, i, diff)
		}
	}
	return nil
}

// CheckGuard probes a predicate for the purity guards are required to
// have: evaluating twice on clones of the same (shape, context) must
// give the same answer.
func CheckGuard(name string, g Predicate, samples []Shape, rc RunContext) error {
	for i, s := range samples {
		first := g(s.Clone(), rc)
		second := g(s.Clone(), rc)
		if first != second {
			return fmt.Errorf("guard %s diverged on sample %d: %v then %v", name, i, first, second)
		}
	}
	return nil
}
