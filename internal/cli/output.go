package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/engine"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Print writes data as indented JSON, or calls text in text mode.
func (f *OutputFormatter) Print(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	text(f.Writer)
	return nil
}

// propertyView is the printable form of a property cell.
type propertyView struct {
	Key        string `json:"key,omitempty"`
	Name       string `json:"name"`
	Value      any    `json:"value"`
	Visibility string `json:"visibility,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// elementView is the printable form of a vertex or edge.
type elementView struct {
	Type        string         `json:"type"`
	ID          string         `json:"id"`
	Visibility  string         `json:"visibility,omitempty"`
	Timestamp   int64          `json:"timestamp"`
	ConceptType string         `json:"concept_type,omitempty"`
	Label       string         `json:"label,omitempty"`
	Out         string         `json:"out,omitempty"`
	In          string         `json:"in,omitempty"`
	Properties  []propertyView `json:"properties"`
	Edges       []edgeView     `json:"edges,omitempty"`
	Tables      []string       `json:"extended_tables,omitempty"`
}

type edgeView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Direction string `json:"direction"`
	Other     string `json:"other"`
}

func newElementView(el engine.Element) elementView {
	s := el.State()
	view := elementView{
		Type:        s.Type.String(),
		ID:          s.ID,
		Visibility:  string(s.Visibility),
		Timestamp:   s.Timestamp,
		ConceptType: s.ConceptType,
		Label:       s.Label,
		Out:         s.OutVertexID,
		In:          s.InVertexID,
		Properties:  make([]propertyView, 0, len(s.Properties)),
	}
	for _, p := range el.Properties() {
		view.Properties = append(view.Properties, propertyView{
			Key: p.Key, Name: p.Name, Value: p.Value, Visibility: string(p.Visibility), Timestamp: p.Timestamp,
		})
	}
	if tables, err := el.ExtendedDataTableNames(); err == nil {
		view.Tables = tables
	}
	if v, ok := el.(*engine.Vertex); ok {
		if infos, err := v.EdgeInfos(core.DirectionBoth); err == nil {
			for _, info := range infos {
				view.Edges = append(view.Edges, edgeView{
					ID: info.EdgeID, Label: info.Label, Direction: info.Direction.String(), Other: info.OtherVertexID,
				})
			}
		}
	}
	return view
}

func (v elementView) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s %s", v.Type, v.ID)
	if v.Visibility != "" {
		fmt.Fprintf(w, " [%s]", v.Visibility)
	}
	fmt.Fprintf(w, " @%d\n", v.Timestamp)
	if v.ConceptType != "" {
		fmt.Fprintf(w, "  concept: %s\n", v.ConceptType)
	}
	if v.Label != "" {
		fmt.Fprintf(w, "  %s -[%s]-> %s\n", v.Out, v.Label, v.In)
	}
	for _, p := range v.Properties {
		name := p.Name
		if p.Key != "" {
			name = p.Key + ":" + p.Name
		}
		if p.Visibility != "" {
			name += "[" + p.Visibility + "]"
		}
		fmt.Fprintf(w, "  %s = %v\n", name, p.Value)
	}
	for _, e := range v.Edges {
		fmt.Fprintf(w, "  edge %s %s %s %s\n", e.ID, e.Direction, e.Label, e.Other)
	}
	if len(v.Tables) > 0 {
		fmt.Fprintf(w, "  extended: %s\n", strings.Join(v.Tables, ", "))
	}
}
