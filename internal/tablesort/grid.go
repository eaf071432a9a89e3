package tablesort

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Grid is an in-memory table: one header row and string body rows.
// Short rows read as empty cells.
type Grid struct {
	Header []string
	Rows   [][]string
}

// Len implements Table.
func (g *Grid) Len() int { return len(g.Rows) }

// Cell implements Table.
func (g *Grid) Cell(row, col int) string {
	if col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// Swap implements Table.
func (g *Grid) Swap(i, j int) { g.Rows[i], g.Rows[j] = g.Rows[j], g.Rows[i] }

// Column returns the index of a header, matched case-insensitively, or -1.
func (g *Grid) Column(name string) int {
	for i, h := range g.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Render writes the grid as space-aligned text columns.
func (g *Grid) Render(w io.Writer) error {
	widths := make([]int, len(g.Header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(g.Header)
	for _, r := range g.Rows {
		measure(r)
	}

	line := func(cells []string) error {
		var b strings.Builder
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			}
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		return err
	}

	if err := line(g.Header); err != nil {
		return err
	}
	for _, r := range g.Rows {
		if err := line(r); err != nil {
			return err
		}
	}
	return nil
}
