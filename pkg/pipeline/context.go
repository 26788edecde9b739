package pipeline

// RunContext carries the read-mostly configuration for one pipeline run.
// It is supplied once per Run and does not evolve as the shape moves
// through the pipeline; morphs inspect it through the typed accessors.
type RunContext struct {
	options map[string]any
}

// NewRunContext builds a run context from an options map. The map is
// copied so later caller mutation cannot leak into a running pipeline.
func NewRunContext(options map[string]any) RunContext {
	return RunContext{options: cloneMap(options)}
}

// Has reports whether the named option is present.
func (rc RunContext) Has(key string) bool {
	_, ok := rc.options[key]
	return ok
}

// Value returns the raw option value and whether it is present.
func (rc RunContext) Value(key string) (any, bool) {
	v, ok := rc.options[key]
	return v, ok
}

// Bool returns the named option as a bool, or false when absent or
// of another type.
func (rc RunContext) Bool(key string) bool {
	v, _ := rc.options[key].(bool)
	return v
}

// String returns the named option as a string and whether it was
// present as a string.
func (rc RunContext) String(key string) (string, bool) {
	v, ok := rc.options[key].(string)
	return v, ok
}

// Int returns the named option as an int, converting from the numeric
// types YAML and JSON decoders produce.
func (rc RunContext) Int(key string) (int, bool) {
	switch v := rc.options[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Float returns the named option as a float64, converting from ints.
func (rc RunContext) Float(key string) (float64, bool) {
	switch v := rc.options[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Keys returns the option keys present in the context.
func (rc RunContext) Keys() []string {
	keys := make([]string, 0, len(rc.options))
	for k := range rc.options {
		keys = append(keys, k)
	}
	return keys
}

// subset returns the values for the given keys, in key order, for
// memoization key derivation. Absent keys yield nil entries so the
// derived key still distinguishes present-nil from absent.
func (rc RunContext) subset(keys []string) []any {
	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		v, ok := rc.options[k]
		out = append(out, ok, v)
	}
	return out
}
