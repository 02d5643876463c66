// Package render turns activity statistics into printable output formats
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/briangreenhill/tcxview/tcx"
)

// Renderer is one output format
type Renderer interface {
	// Name is the value passed to --format (e.g., "text", "json")
	Name() string

	// Render formats the statistics
	Render(stats *tcx.Statistics) (string, error)
}

// Registry manages available output formats
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Default returns a registry with the built-in formats
func Default() *Registry {
	r := NewRegistry()
	r.Register(Text{})
	r.Register(JSON{})
	r.Register(CSV{})
	return r
}

// Register adds a renderer, replacing any with the same name
func (r *Registry) Register(rd Renderer) {
	r.renderers[rd.Name()] = rd
}

// Get retrieves a renderer by name
func (r *Registry) Get(name string) (Renderer, bool) {
	rd, ok := r.renderers[name]
	return rd, ok
}

// List returns the registered format names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Text is the markdown run log
type Text struct{}

func (Text) Name() string { return "text" }
func (Text) Render(s *tcx.Statistics) (string, error) {
	return tcx.FormatRunLog(s), nil
}

// JSON is the full statistics record, route included
type JSON struct{}

func (JSON) Name() string { return "json" }
func (JSON) Render(s *tcx.Statistics) (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal statistics: %w", err)
	}
	return string(b) + "\n", nil
}

// CSV is the detail table as label,value lines
type CSV struct{}

func (CSV) Name() string { return "csv" }
func (CSV) Render(s *tcx.Statistics) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"stat", "value"}); err != nil {
		return "", err
	}
	for _, row := range tcx.DetailRows(s) {
		if err := w.Write([]string{row.Label, row.Value}); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
