package display

import (
	"strings"
	"unicode/utf8"
)

// Style is how a table row is drawn.
type Style int

const (
	Plain Style = iota
	// Faded rows are in the past, e.g. the prayer currently in progress.
	Faded
	// Highlight marks the row that matters now, e.g. the next prayer.
	Highlight
)

// Table renders left-aligned columns. Widths count runes so transliterated
// names such as "Ramaḍān" line up.
type Table struct {
	headers []string
	rows    []tableRow
}

type tableRow struct {
	cells []string
	style Style
}

// NewTable creates a table. Without headers only the rows are drawn.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row and returns its index.
func (t *Table) AddRow(cells ...string) int {
	t.rows = append(t.rows, tableRow{cells: cells})
	return len(t.rows) - 1
}

// SetStyle styles row idx; out-of-range indexes are ignored.
func (t *Table) SetStyle(idx int, s Style) {
	if idx >= 0 && idx < len(t.rows) {
		t.rows[idx].style = s
	}
}

// Render draws the table with a two-space indent and no trailing spaces.
func (t *Table) Render() string {
	widths := t.widths()
	if len(widths) == 0 {
		return ""
	}

	var sb strings.Builder
	if len(t.headers) > 0 {
		sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")
		sep := make([]string, len(widths))
		for i, w := range widths {
			sep[i] = strings.Repeat("─", w)
		}
		sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")
	}

	for _, r := range t.rows {
		line := formatRow(r.cells, widths)
		switch r.style {
		case Faded:
			line = Dim(line)
		case Highlight:
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func (t *Table) widths() []int {
	n := len(t.headers)
	for _, r := range t.rows {
		if len(r.cells) > n {
			n = len(r.cells)
		}
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, c := range cells {
			if w := utf8.RuneCountInString(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.headers)
	for _, r := range t.rows {
		measure(r.cells)
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	var sb strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(cell)))
	}
	return strings.TrimRight(sb.String(), " ")
}
