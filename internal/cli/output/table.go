package output

import (
	"encoding/json"
	"io"
	"text/tabwriter"
)

// Table represents tabular data built explicitly by a command.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table in aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if len(t.Headers) > 0 {
		for i, h := range t.Headers {
			if i > 0 {
				io.WriteString(tw, "\t")
			}
			io.WriteString(tw, h)
		}
		io.WriteString(tw, "\n")
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			if i > 0 {
				io.WriteString(tw, "\t")
			}
			io.WriteString(tw, cell)
		}
		io.WriteString(tw, "\n")
	}
	return nil
}

// TableFormatter renders a *Table directly and falls back to indented
// JSON for anything else.
type TableFormatter struct{}

// Format renders data for terminal display.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if t, ok := data.(*Table); ok {
		return t.Render(w)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
