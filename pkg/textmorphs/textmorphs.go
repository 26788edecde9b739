// Package textmorphs provides a small catalog of text-shaping morphs
// over a shape's "text" field. It exists for demos, the CLI, and as a
// reference for how domain packages declare morph metadata and raise
// contract errors.
package textmorphs

import (
	"context"
	"strings"
	"unicode"

	"github.com/jonboulle/clockwork"

	"morphline/pkg/pipeline"
)

// textField extracts the "text" field, raising an input-contract error
// when it is absent or not a string.
func textField(s pipeline.Shape) (string, error) {
	v, ok := s.Field("text")
	if !ok {
		return "", pipeline.InputContractErrorf("shape %s: required field \"text\" absent", s.ID)
	}
	text, ok := v.(string)
	if !ok {
		return "", pipeline.InputContractErrorf("shape %s: field \"text\" is %T, want string", s.ID, v)
	}
	return text, nil
}

func textTransform(fn func(string) string) pipeline.TransformFunc {
	return func(_ context.Context, s pipeline.Shape, _ pipeline.RunContext) (pipeline.Shape, error) {
		text, err := textField(s)
		if err != nil {
			return pipeline.Shape{}, err
		}
		return s.SetField("text", fn(text)), nil
	}
}

// Lowercase folds the text field to lower case.
var Lowercase = pipeline.MustMorph("lowercase", textTransform(strings.ToLower), pipeline.Metadata{
	Pure:        true,
	Fusible:     true,
	Cost:        1,
	Description: "fold the text field to lower case",
})

// Trim strips leading and trailing whitespace from the text field.
var Trim = pipeline.MustMorph("trim", textTransform(strings.TrimSpace), pipeline.Metadata{
	Pure:        true,
	Fusible:     true,
	Cost:        1,
	Description: "strip surrounding whitespace from the text field",
})

// UpperFirst capitalizes the first rune of the text field.
var UpperFirst = pipeline.MustMorph("upper-first", textTransform(func(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}), pipeline.Metadata{
	Pure:        true,
	Fusible:     true,
	Cost:        1,
	Description: "capitalize the first rune of the text field",
})

// AddSuffix appends the context's "suffix" option to the text field.
// The option is required; runs without it fail with a configuration
// error. Declared memoizable: the output depends only on the shape and
// the declared "suffix" key.
var AddSuffix = pipeline.MustMorph("add-suffix",
	func(_ context.Context, s pipeline.Shape, rc pipeline.RunContext) (pipeline.Shape, error) {
		suffix, ok := rc.String("suffix")
		if !ok {
			return pipeline.Shape{}, pipeline.ContextConfigErrorf("option \"suffix\" absent or not a string")
		}
		text, err := textField(s)
		if err != nil {
			return pipeline.Shape{}, err
		}
		return s.SetField("text", text+suffix), nil
	},
	pipeline.Metadata{
		Pure:        true,
		Cost:        1,
		Memoizable:  true,
		MemoKeys:    []string{"suffix"},
		Description: "append the configured suffix to the text field",
	})

// Truncate cuts the text field to the context's "max_len" option.
var Truncate = pipeline.MustMorph("truncate",
	func(_ context.Context, s pipeline.Shape, rc pipeline.RunContext) (pipeline.Shape, error) {
		maxLen, ok := rc.Int("max_len")
		if !ok || maxLen < 0 {
			return pipeline.Shape{}, pipeline.ContextConfigErrorf("option \"max_len\" absent or negative")
		}
		text, err := textField(s)
		if err != nil {
			return pipeline.Shape{}, err
		}
		runes := []rune(text)
		if len(runes) > maxLen {
			text = string(runes[:maxLen])
		}
		return s.SetField("text", text), nil
	},
	pipeline.Metadata{
		Pure:        true,
		Cost:        1,
		Memoizable:  true,
		MemoKeys:    []string{"max_len"},
		Description: "cut the text field to at most max_len runes",
	})

// Stamp records the processing time in the shape's metadata. Impure:
// it reads the injected clock; the reading is reflected in the returned
// shape, never in external state.
func Stamp(clk clockwork.Clock) *pipeline.Morph {
	return pipeline.MustMorph("stamp",
		func(_ context.Context, s pipeline.Shape, _ pipeline.RunContext) (pipeline.Shape, error) {
			return s.SetMeta("stamped_at", clk.Now().UTC().Format("2006-01-02T15:04:05.000Z")), nil
		},
		pipeline.Metadata{
			Cost:        1,
			Description: "record the processing time in shape metadata",
		})
}

// Registry returns a fresh caller-owned registry of all text morphs,
// with Stamp bound to the real clock.
func Registry() *pipeline.Registry {
	return pipeline.NewRegistry().MustRegister(
		Lowercase, Trim, UpperFirst, AddSuffix, Truncate, Stamp(clockwork.NewRealClock()),
	)
}
