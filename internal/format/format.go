// Package format renders CLI tables describing pipelines and morphs.
package format

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"morphline/pkg/pipeline"
)

// Mode controls the rendering target.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps a CLI flag value to a Mode; anything but "markdown"
// renders ASCII.
func ParseMode(s string) Mode {
	if s == "markdown" {
		return Markdown
	}
	return ASCII
}

// MorphTable renders the introspectable metadata of every morph in the
// pipeline, one row per morph in execution order, grouped by stage.
func MorphTable(p *pipeline.Pipeline, mode Mode) string {
	w := newWriter(mode)
	w.AppendHeader(table.Row{"stage", "morph", "pure", "fusible", "cost", "memo", "description"})
	for _, st := range p.Stages() {
		for _, m := range st.Morphs() {
			meta := m.Metadata()
			w.AppendRow(table.Row{
				st.Name(), m.Name(),
				BoolMark(meta.Pure), BoolMark(meta.Fusible), meta.Cost, BoolMark(meta.Memoizable),
				Truncate(meta.Description, 48),
			})
		}
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 7, WidthMax: 48},
	})
	return render(w, mode)
}

// PipelineTable renders the pipeline-level metadata as a two-column
// key/value table.
func PipelineTable(p *pipeline.Pipeline, mode Mode) string {
	meta := p.Meta()
	w := newWriter(mode)
	w.AppendHeader(table.Row{"field", "value"})
	w.AppendRow(table.Row{"pipeline", p.Name()})
	w.AppendRow(table.Row{"description", meta.Description})
	w.AppendRow(table.Row{"category", meta.Category})
	w.AppendRow(table.Row{"tags", join(meta.Tags)})
	w.AppendRow(table.Row{"input_type", meta.InputType})
	w.AppendRow(table.Row{"output_type", meta.OutputType})
	w.AppendRow(table.Row{"requires", join(meta.Requires)})
	return render(w, mode)
}

func newWriter(mode Mode) table.Writer {
	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, mode Mode) string {
	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

func join(parts []string) string {
	return strings.Join(parts, ", ")
}
