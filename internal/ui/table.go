package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. A zero Width sizes the column to its
// widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values, possibly already styled.
type Row []string

// Table renders rows as aligned, lipgloss-styled columns.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Widths are measured with
// lipgloss.Width so styled cells line up.
func (t *Table) Render() string {
	widths := t.widths()
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	var sb strings.Builder
	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = header.Render(fit(col.Title, widths[i]))
	}
	sb.WriteString(strings.Join(cells, "  ") + "\n")

	for i := range t.Columns {
		cells[i] = StyleMeta.Render(strings.Repeat("─", widths[i]))
	}
	sb.WriteString(strings.Join(cells, "  ") + "\n")

	for _, row := range t.Rows {
		for i := range t.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = fit(v, widths[i])
		}
		sb.WriteString(strings.Join(cells, "  ") + "\n")
	}
	return sb.String()
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

// fit pads s to width display cells. Plain strings wider than width are cut;
// styled strings are left alone rather than split inside an escape sequence.
func fit(s string, width int) string {
	n := lipgloss.Width(s)
	if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	if n > width && n == len(s) {
		return s[:width]
	}
	return s
}

// KeyValueBlock renders key/value pairs in a bordered panel.
func KeyValueBlock(title string, pairs [][2]string) string {
	keyWidth := 0
	for _, p := range pairs {
		if len(p[0]) > keyWidth {
			keyWidth = len(p[0])
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-*s", keyWidth+1, p[0]+":"))
		sb.WriteString(key + " " + p[1] + "\n")
	}
	return StylePanel.Render(strings.TrimRight(sb.String(), "\n"))
}
