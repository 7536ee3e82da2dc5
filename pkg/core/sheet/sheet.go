// Package sheet handles rectangular spreadsheet-shaped inputs: cleanup,
// column-oriented transaction extraction, Bloomberg pricing rows, and the
// HTML/markdown/JSON payload adapters that produce grids.
package sheet

import (
	"strings"
)

// Sheet is one named rectangular grid of cells, header row included, as
// delivered by the external spreadsheet-reading collaborator.
type Sheet struct {
	Name string
	Rows [][]string
}

// Clean drops fully empty rows and fully empty columns and normalizes cell
// text (trimmed, embedded newlines collapsed to single spaces). Returns a
// new sheet; the input is not modified.
func (s *Sheet) Clean() *Sheet {
	var rows [][]string
	for _, row := range s.Rows {
		norm := make([]string, len(row))
		empty := true
		for i, cell := range row {
			norm[i] = normalizeCell(cell)
			if norm[i] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, norm)
		}
	}

	if len(rows) == 0 {
		return &Sheet{Name: s.Name}
	}

	// Column emptiness is judged across the ragged widths.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	keep := make([]bool, width)
	for _, row := range rows {
		for i, cell := range row {
			if cell != "" {
				keep[i] = true
			}
		}
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		for i := 0; i < width; i++ {
			if !keep[i] {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			out[r] = append(out[r], cell)
		}
	}
	return &Sheet{Name: s.Name, Rows: out}
}

// Cell returns the value at (row, col), empty string when out of range.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// IsEmpty reports whether the sheet has no usable cells.
func (s *Sheet) IsEmpty() bool {
	for _, row := range s.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}

func normalizeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "\r\n", "\n")
	cell = strings.ReplaceAll(cell, "\n", " ")
	return strings.Join(strings.Fields(cell), " ")
}
