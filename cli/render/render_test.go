package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	valid := map[string]Format{
		"json":  FormatJSON,
		"Json":  FormatJSON,
		"yaml":  FormatYAML,
		"table": FormatTable,
		"TABLE": FormatTable,
		"":      "",
	}
	for input, want := range valid {
		got, err := ParseFormat(input)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}

	for _, input := range []string{"csv", "xml", "jsonl"} {
		if _, err := ParseFormat(input); err == nil {
			t.Errorf("ParseFormat(%q) should fail", input)
		}
	}
}

func TestParseFormat_ErrorNamesTheChoices(t *testing.T) {
	_, err := ParseFormat("csv")
	if err == nil {
		t.Fatal("ParseFormat accepted csv")
	}
	if !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error should list the accepted formats, got: %v", err)
	}
}

// sweepRow mirrors the shape the sweep command renders.
type sweepRow struct {
	Kind      string `json:"kind"`
	Found     int    `json:"found"`
	Uploaded  int    `json:"uploaded"`
	Remaining int    `json:"remaining"`
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatJSON, &buf)

	if err := r.Render([]sweepRow{{Kind: "video", Found: 3, Uploaded: 3}}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"kind"`) || !strings.Contains(got, `"video"`) {
		t.Errorf("json output should carry kind=video, got: %s", got)
	}
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatYAML, &buf)

	if err := r.Render(map[string]string{"kind": "screenshot"}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "kind:") || !strings.Contains(got, "screenshot") {
		t.Errorf("yaml output should carry the kind key, got: %s", got)
	}
}

func TestRenderer_Table_Struct(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	type summary struct {
		Kind  string `json:"kind"`
		Count int    `json:"count"`
	}

	if err := r.Render(summary{Kind: "video", Count: 42}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "kind:") || !strings.Contains(got, "video") {
		t.Errorf("field list should name kind, got: %s", got)
	}
	if !strings.Contains(got, "count:") || !strings.Contains(got, "42") {
		t.Errorf("field list should name count, got: %s", got)
	}
}

func TestRenderer_Table_Slice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	err := r.Render([]sweepRow{
		{Kind: "video", Found: 3, Uploaded: 2, Remaining: 1},
		{Kind: "screenshot", Found: 1, Uploaded: 1},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "kind") || !strings.Contains(got, "remaining") {
		t.Errorf("header row should name the json-tag columns, got: %s", got)
	}
	if !strings.Contains(got, "video") || !strings.Contains(got, "screenshot") {
		t.Errorf("rows should carry both kinds, got: %s", got)
	}
}

// Inventory rows carry a nested day slice; the table renderer must
// summarize it instead of dumping the struct values.
func TestRenderer_Table_NestedSliceSummarized(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	type day struct {
		Day string `json:"day"`
	}
	type inv struct {
		Kind string `json:"kind"`
		Days []day  `json:"days"`
	}

	err := r.Render([]inv{{Kind: "video", Days: []day{{Day: "2026-08-24"}, {Day: "2026-08-25"}}}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "[2 items]") {
		t.Errorf("nested slice should render as a summary, got: %s", got)
	}
	if strings.Contains(got, "2026-08-24") {
		t.Errorf("nested slice values should not leak into the table: %s", got)
	}
}

func TestRenderer_Table_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	if err := r.Render([]sweepRow{}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := buf.String(); !strings.Contains(got, "(no results)") {
		t.Errorf("empty inventory should render the (no results) placeholder, got: %s", got)
	}
}

func TestRenderer_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(Format("csv"), &buf)

	if err := r.Render(map[string]string{}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
