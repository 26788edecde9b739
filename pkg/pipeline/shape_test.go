package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestShape_CloneIsDeep(t *testing.T) {
	original := NewShape("s1", map[string]any{
		"text":   "hello",
		"nested": map[string]any{"k": "v"},
		"list":   []any{1, map[string]any{"inner": true}},
	})
	original.Meta = map[string]any{"source": "test"}

	clone := original.Clone()
	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.Fields["text"] = "changed"
	clone.Fields["nested"].(map[string]any)["k"] = "changed"
	clone.Fields["list"].([]any)[1].(map[string]any)["inner"] = false
	clone.Meta["source"] = "changed"

	if original.Fields["text"] != "hello" {
		t.Error("top-level field shared with clone")
	}
	if original.Fields["nested"].(map[string]any)["k"] != "v" {
		t.Error("nested map shared with clone")
	}
	if original.Fields["list"].([]any)[1].(map[string]any)["inner"] != true {
		t.Error("map inside slice shared with clone")
	}
	if original.Meta["source"] != "test" {
		t.Error("metadata shared with clone")
	}
}

func TestShape_SetFieldCopies(t *testing.T) {
	a := NewShape("s1", map[string]any{"text": "one"})
	b := a.SetField("text", "two")

	if got, _ := a.StringField("text"); got != "one" {
		t.Errorf("receiver mutated: %q", got)
	}
	if got, _ := b.StringField("text"); got != "two" {
		t.Errorf("copy missing new value: %q", got)
	}
}

func TestShape_SetFieldInitializes(t *testing.T) {
	// A shape decoded from JSON without a "fields" key carries a nil
	// map; SetField must still produce a usable copy.
	var s Shape
	if err := json.Unmarshal([]byte(`{"id":"x"}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	out := s.SetField("text", "v")
	if got, _ := out.StringField("text"); got != "v" {
		t.Errorf("text = %q, want v", got)
	}
	if s.Fields != nil {
		t.Errorf("receiver gained fields: %v", s.Fields)
	}
}

func TestShape_SetMetaInitializes(t *testing.T) {
	s := NewShape("s1", nil).SetMeta("k", 1)
	if s.Meta["k"] != 1 {
		t.Errorf("Meta = %v", s.Meta)
	}
}

func TestShape_Equal(t *testing.T) {
	a := NewShape("s1", map[string]any{"n": 1})
	b := NewShape("s1", map[string]any{"n": 1})
	c := NewShape("s2", map[string]any{"n": 1})

	if !a.Equal(b) {
		t.Error("structurally identical shapes unequal")
	}
	if a.Equal(c) {
		t.Error("shapes with different IDs equal")
	}
	if a.Equal(a.SetField("n", 2)) {
		t.Error("shapes with different fields equal")
	}
}

func TestShape_FieldAccessors(t *testing.T) {
	s := NewShape("s1", map[string]any{"text": "v", "n": 3})

	if v, ok := s.Field("n"); !ok || v != 3 {
		t.Errorf("Field(n) = %v, %v", v, ok)
	}
	if _, ok := s.Field("missing"); ok {
		t.Error("Field reported a missing key present")
	}
	if v, ok := s.StringField("text"); !ok || v != "v" {
		t.Errorf("StringField(text) = %q, %v", v, ok)
	}
	if _, ok := s.StringField("n"); ok {
		t.Error("StringField accepted a non-string")
	}
}
