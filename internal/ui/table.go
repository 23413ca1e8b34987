package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Width 0 sizes the column to its content.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			w[i] = col.Width
			continue
		}
		w[i] = lipgloss.Width(col.Title)
		for _, row := range t.Rows {
			if i < len(row) && lipgloss.Width(row[i]) > w[i] {
				w[i] = lipgloss.Width(row[i])
			}
		}
	}
	return w
}

// Render returns the full table as a string. Cells are padded by display
// width so pre-styled values keep their columns aligned.
func (t *Table) Render() string {
	var sb strings.Builder
	widths := t.widths()

	pad := func(s string, width int) string {
		if n := lipgloss.Width(s); n < width {
			return s + strings.Repeat(" ", width-n)
		}
		return s
	}

	var headers, divider []string
	for i, col := range t.Columns {
		headers = append(headers, StyleHeader.Render(pad(col.Title, widths[i])))
		divider = append(divider, StyleMeta.Render(strings.Repeat("─", widths[i])))
	}
	sb.WriteString(strings.Join(headers, "  ") + "\n")
	sb.WriteString(strings.Join(divider, "  ") + "\n")

	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = pad(val, widths[j])
			if i == t.SelIdx {
				cells[j] = StyleSelected.Render(cells[j])
			}
		}
		sb.WriteString(strings.Join(cells, "  ") + "\n")
	}

	return sb.String()
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + p[1] + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
