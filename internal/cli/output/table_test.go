package output

import (
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	table := &Table{Headers: []string{"ALIAS", "FIELDS"}}
	table.AddRow("parcels", "name,status")
	table.AddRow("roads", "road_name")

	var sb strings.Builder
	if err := table.Render(&sb); err != nil {
		t.Fatal(err)
	}

	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ALIAS") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "parcels") || !strings.Contains(lines[2], "roads") {
		t.Errorf("rows missing:\n%s", out)
	}
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var sb strings.Builder
	f := &TableFormatter{}
	if err := f.Format(&sb, map[string]string{"status": "ok"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `"status": "ok"`) {
		t.Errorf("output = %q", sb.String())
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json format should yield JSONFormatter")
	}
	if _, ok := NewFormatter(FormatTable).(*TableFormatter); !ok {
		t.Error("table format should yield TableFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("unknown format should default to table")
	}
}
