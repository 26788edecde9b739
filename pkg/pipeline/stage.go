package pipeline

// entry is one slot in a stage: a morph, optionally guarded by a
// predicate. A guarded entry whose predicate is false at run time is
// skipped and behaves as identity.
type entry struct {
	morph *Morph
	guard Predicate
}

// Stage is a named, ordered grouping of morphs inside a pipeline. It is
// a scoping and diagnostics device only: executing a stage executes its
// entries strictly in declared order and propagates the first error.
type Stage struct {
	name        string
	description string
	entries     []entry
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// Description returns the stage's free-form description.
func (s *Stage) Description() string { return s.description }

// Morphs returns the stage's morphs in declared order.
func (s *Stage) Morphs() []*Morph {
	out := make([]*Morph, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.morph
	}
	return out
}

// Guarded reports whether the i-th entry carries a predicate.
func (s *Stage) Guarded(i int) bool {
	return i >= 0 && i < len(s.entries) && s.entries[i].guard != nil
}
