package state

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type ContentType string

const (
	ContentHate     ContentType = "hate"
	ContentLove     ContentType = "love"
	ContentAnalyze  ContentType = "analyze"
	ContentSettings ContentType = "settings"
)

// Row is one entry of a content table.
type Row struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Details     string `json:"details" yaml:"details"`
}

//go:embed content.yaml
var contentYAML []byte

var content = mustLoadContent(contentYAML)

func mustLoadContent(b []byte) map[ContentType][]Row {
	c, err := loadContent(b)
	if err != nil {
		panic(err)
	}
	return c
}

func loadContent(b []byte) (map[ContentType][]Row, error) {
	var c map[ContentType][]Row
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse content tables: %w", err)
	}
	for _, ct := range []ContentType{ContentHate, ContentLove, ContentAnalyze, ContentSettings} {
		if _, ok := c[ct]; !ok {
			return nil, fmt.Errorf("content table %q missing", ct)
		}
	}
	return c, nil
}

// ContentFor maps a button or tab label to the content it shows. Unknown
// labels fall back to hate.
func ContentFor(label string) ContentType {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "hate"):
		return ContentHate
	case strings.Contains(l, "love"):
		return ContentLove
	case strings.Contains(l, "analyze"):
		return ContentAnalyze
	}
	return ContentHate
}

// Rows returns a copy of the table for ct.
func Rows(ct ContentType) []Row {
	return append([]Row(nil), content[ct]...)
}

// Filter keeps rows whose name, description or details contain text,
// ignoring case. An empty text keeps everything.
func Filter(rows []Row, text string) []Row {
	if text == "" {
		return rows
	}
	term := strings.ToLower(text)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Description), term) ||
			strings.Contains(strings.ToLower(r.Details), term) {
			out = append(out, r)
		}
	}
	return out
}
