package tcx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDocument_Malformed(t *testing.T) {
	truncated, err := os.ReadFile(filepath.Join("testdata", "truncated.tcx"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"plain text", "this is not xml"},
		{"truncated", string(truncated)},
		{"mismatched tags", "<a><b></a></b>"},
		{"two roots", "<a/><b/>"},
		{"unknown entity", "<a>&nbsp;</a>"},
		{"trailing text", "<a/>junk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.raw)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
			if doc != nil {
				t.Errorf("expected no document on failure, got %+v", doc)
			}
		})
	}
}

func TestParseDocument_Tree(t *testing.T) {
	doc, err := ParseDocument(`<?xml version="1.0"?>
<root xmlns:ns3="urn:ext">
  <Activity Sport="Running">
    <Lap><Value>1</Value></Lap>
    <Lap><Nested><Lap><Value>2</Value></Lap></Nested></Lap>
  </Activity>
  <Extensions><ns3:TPX><ns3:RunCadence> 85 </ns3:RunCadence></ns3:TPX></Extensions>
</root>`)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	laps := doc.FindAll("Lap")
	if len(laps) != 3 {
		t.Fatalf("expected 3 laps at any depth, got %d", len(laps))
	}
	if got := laps[2].Text(); got != "2" {
		t.Errorf("expected nested lap text '2', got %q", got)
	}
	if got := laps[1].Text(); got != "2" {
		t.Errorf("expected outer lap text to include descendants, got %q", got)
	}

	act := doc.Find("Activity")
	if sport, ok := act.Attr("Sport"); !ok || sport != "Running" {
		t.Errorf("expected Sport=Running, got %q (%v)", sport, ok)
	}
	if _, ok := act.Attr("Missing"); ok {
		t.Error("expected missing attribute to report false")
	}

	cad := doc.Find("Extensions").Find("RunCadence")
	if cad == nil {
		t.Fatal("expected prefixed RunCadence to match by local name")
	}
	if v, ok := parseNumber(cad.Text()); !ok || v != 85 {
		t.Errorf("expected cadence 85, got %v (%v)", v, ok)
	}

	if doc.Find("root") != doc.Root {
		t.Error("expected Find to match the root element")
	}
	if doc.Find("Nope") != nil {
		t.Error("expected nil for a missing element")
	}
}

func TestParseDocument_DeclaredEncoding(t *testing.T) {
	for _, enc := range []string{"ISO-8859-1", "windows-1252", "US-ASCII", "UTF-8"} {
		t.Run(enc, func(t *testing.T) {
			raw := `<?xml version="1.0" encoding="` + enc + `"?>
<TrainingCenterDatabase><Lap><DistanceMeters>5000</DistanceMeters></Lap></TrainingCenterDatabase>`
			doc, err := ParseDocument(raw)
			if err != nil {
				t.Fatalf("ParseDocument failed: %v", err)
			}
			if got := doc.Find("DistanceMeters").Text(); got != "5000" {
				t.Errorf("expected distance text 5000, got %q", got)
			}
		})
	}
}

func TestElement_TextOrder(t *testing.T) {
	doc, err := ParseDocument(`<a>x<b>y<c>z</c>w</b>v<d/>u</a>`)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	tests := []struct {
		local string
		want  string
	}{
		{"a", "xyzwvu"},
		{"b", "yzw"},
		{"c", "z"},
		{"d", ""},
	}
	for _, tt := range tests {
		if got := doc.Find(tt.local).Text(); got != tt.want {
			t.Errorf("Text of %s = %q, want %q", tt.local, got, tt.want)
		}
	}
}

func TestElement_NilSafe(t *testing.T) {
	var e *Element
	if e.Find("x") != nil || e.FindAll("x") != nil || e.Text() != "" {
		t.Error("nil element lookups should be empty")
	}
	if _, ok := e.Attr("x"); ok {
		t.Error("nil element has no attributes")
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"run.tcx", true},
		{"RUN.TCX", true},
		{"morning.run.Tcx", true},
		{"run.fit", false},
		{"run.gpx", false},
		{"tcx", false},
		{"run.tcx.zip", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateFileName(tt.name)
		if tt.ok && err != nil {
			t.Errorf("ValidateFileName(%q) unexpected error: %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("ValidateFileName(%q) = %v, want ErrInvalidExtension", tt.name, err)
		}
	}
}
