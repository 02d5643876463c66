package tcx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is a read-only node of a parsed document. Names are matched by
// local name only, so namespace prefixes such as ns3: do not matter.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	runs     []textRun
}

// textRun is character data that appears directly inside an element, before
// the child at index at.
type textRun struct {
	at   int
	data []byte
}

// Document is the element tree of one parsed file.
type Document struct {
	Root *Element
}

// ParseDocument decodes raw as XML into an element tree. Any syntax error
// fails the whole parse with ErrMalformedDocument; a partially built tree is
// never returned.
func ParseDocument(raw string) (*Document, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	// raw is already decoded text, so the declared encoding is ignored.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return r, nil
	}

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attrs: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedDocument)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("%w: text outside root element", ErrMalformedDocument)
				}
				continue
			}
			stack[len(stack)-1].addText(t)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unclosed element %s", ErrMalformedDocument, stack[len(stack)-1].Name.Local)
	}
	return &Document{Root: root}, nil
}

// FindAll returns every element named local, the root included, in document order.
func (d *Document) FindAll(local string) []*Element {
	if d == nil || d.Root == nil {
		return nil
	}
	var out []*Element
	if d.Root.Name.Local == local {
		out = append(out, d.Root)
	}
	return d.Root.collect(local, out)
}

// Find returns the first element named local, or nil.
func (d *Document) Find(local string) *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	if d.Root.Name.Local == local {
		return d.Root
	}
	return d.Root.Find(local)
}

// FindAll returns the descendants of e named local in document order.
func (e *Element) FindAll(local string) []*Element {
	if e == nil {
		return nil
	}
	return e.collect(local, nil)
}

func (e *Element) collect(local string, out []*Element) []*Element {
	for _, c := range e.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
		out = c.collect(local, out)
	}
	return out
}

// Find returns the first descendant of e named local, or nil.
func (e *Element) Find(local string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name.Local == local {
			return c
		}
		if found := c.Find(local); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of the attribute named local.
func (e *Element) Attr(local string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) addText(data []byte) {
	at := len(e.Children)
	if n := len(e.runs); n > 0 && e.runs[n-1].at == at {
		e.runs[n-1].data = append(e.runs[n-1].data, data...)
		return
	}
	e.runs = append(e.runs, textRun{at: at, data: append([]byte(nil), data...)})
}

// Text returns the concatenated character data of e and its descendants in
// document order.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	r := 0
	for i, c := range e.Children {
		for ; r < len(e.runs) && e.runs[r].at <= i; r++ {
			b.Write(e.runs[r].data)
		}
		c.writeText(b)
	}
	for ; r < len(e.runs); r++ {
		b.Write(e.runs[r].data)
	}
}
