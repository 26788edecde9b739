package pipeline

import "reflect"

// Shape is the structured value threaded through a pipeline run:
// an identified record with named fields and optional metadata.
// Shapes are treated as immutable by convention — a morph receives
// a shape and returns a new one, never mutating its input in place.
type Shape struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// NewShape constructs a shape with initialized field storage.
func NewShape(id string, fields map[string]any) Shape {
	if fields == nil {
		fields = make(map[string]any)
	}
	return Shape{ID: id, Fields: fields}
}

// Field returns the named field value and whether it is present.
func (s Shape) Field(name string) (any, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// StringField returns the named field as a string. The second return
// is false when the field is absent or not a string.
func (s Shape) StringField(name string) (string, bool) {
	v, ok := s.Fields[name]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// SetField returns a copy of the shape with the named field set.
// The receiver is left untouched.
func (s Shape) SetField(name string, value any) Shape {
	out := s.Clone()
	if out.Fields == nil {
		out.Fields = make(map[string]any)
	}
	out.Fields[name] = value
	return out
}

// SetMeta returns a copy of the shape with the named metadata entry set.
func (s Shape) SetMeta(name string, value any) Shape {
	out := s.Clone()
	if out.Meta == nil {
		out.Meta = make(map[string]any)
	}
	out.Meta[name] = value
	return out
}

// Clone returns a deep copy of the shape. Nested maps and slices in
// fields and metadata are copied recursively so the clone shares no
// mutable storage with the original.
func (s Shape) Clone() Shape {
	return Shape{
		ID:     s.ID,
		Fields: cloneMap(s.Fields),
		Meta:   cloneMap(s.Meta),
	}
}

// Equal reports structural equality of two shapes.
func (s Shape) Equal(other Shape) bool {
	return s.ID == other.ID &&
		reflect.DeepEqual(s.Fields, other.Fields) &&
		reflect.DeepEqual(s.Meta, other.Meta)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
