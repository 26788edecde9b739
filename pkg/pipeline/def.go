package pipeline

import "fmt"

// Definition is the declarative YAML form of a pipeline. Morphs are
// referenced by name and resolved against a caller-owned Registry;
// guards are expr expressions evaluated against the current shape and
// run context.
//
//	pipeline: normalize-text
//	description: Lowercase and trim free-text fields
//	category: text
//	tags: [normalize]
//	input_type: document
//	output_type: document
//	requires: [locale]
//	vars:
//	  max_len: 120
//	stages:
//	  - name: casing
//	    morphs:
//	      - use: lowercase
//	  - name: whitespace
//	    morphs:
//	      - use: trim
//	      - use: add-suffix
//	        when: ctx.append_suffix == true
type Definition struct {
	Pipeline    string         `yaml:"pipeline"`
	Description string         `yaml:"description,omitempty"`
	Category    string         `yaml:"category,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	InputType   string         `yaml:"input_type,omitempty"`
	OutputType  string         `yaml:"output_type,omitempty"`
	Requires    []string       `yaml:"requires,omitempty"`
	Vars        map[string]any `yaml:"vars,omitempty"`
	Stages      []StageDef     `yaml:"stages"`
}

// StageDef declares one named stage.
type StageDef struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Morphs      []MorphRef `yaml:"morphs"`
}

// MorphRef references a registered morph, optionally guarded by a
// when: expression.
type MorphRef struct {
	Use  string `yaml:"use"`
	When string `yaml:"when,omitempty"`
}

// Validate checks the definition's structural integrity without
// touching any registry: names present, stages non-anonymous, every
// ref carries a morph name.
func (d *Definition) Validate() error {
	if d.Pipeline == "" {
		return fmt.Errorf("pipeline: definition missing pipeline name")
	}
	for i, st := range d.Stages {
		if st.Name == "" {
			return fmt.Errorf("pipeline %s: stage %d missing name", d.Pipeline, i)
		}
		for j, ref := range st.Morphs {
			if ref.Use == "" {
				return fmt.Errorf("pipeline %s: stage %s: morph %d missing use:", d.Pipeline, st.Name, j)
			}
		}
	}
	return nil
}

// Meta derives the pipeline-level metadata from the definition.
func (d *Definition) Meta() Meta {
	return Meta{
		Description: d.Description,
		Category:    d.Category,
		Tags:        d.Tags,
		InputType:   d.InputType,
		OutputType:  d.OutputType,
		Requires:    d.Requires,
	}
}
