// =============================================================================
// Inventario - Table Sorter
// =============================================================================
//
// Reorders the body rows of an already rendered results table by one column.
// The sorter does not know what the rows mean; it only reads cell text and
// swaps adjacent rows in place.
//
// DIRECTION:
//   Every call starts ascending. If the ascending scan does not move any row
//   (the column is already ascending) the same call flips to descending and
//   scans again. Calling twice on the same column therefore toggles between
//   ascending and descending.
//
// COMPARISON:
//   When both cells of a pair parse as finite numbers they are compared
//   numerically, otherwise their lower-cased text is compared. A pair with one non-numeric
//   side is always compared as text.
//
// =============================================================================

package tablesort

import (
	"math"
	"strconv"
	"strings"
)

// Table is the sort target. Row indices address body rows only; the header
// is not part of the Table.
type Table interface {
	Len() int
	Cell(row, col int) string
	Swap(i, j int)
}

// Direction is the order finally applied by SortByColumn.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortByColumn sorts the table in place by column col and returns the
// direction it ended up using.
func SortByColumn(t Table, col int) Direction {
	if bubble(t, col, Ascending) > 0 {
		return Ascending
	}
	bubble(t, col, Descending)
	return Descending
}

// bubble runs adjacent-swap passes until a full pass swaps nothing and
// returns the number of swaps made. Only strictly out-of-order pairs move,
// so rows with equal keys keep their relative order.
func bubble(t Table, col int, dir Direction) int {
	swaps := 0
	for {
		swapped := false
		for i := 0; i+1 < t.Len(); i++ {
			c := compare(t.Cell(i, col), t.Cell(i+1, col))
			if (dir == Ascending && c > 0) || (dir == Descending && c < 0) {
				t.Swap(i, i+1)
				swaps++
				swapped = true
			}
		}
		if !swapped {
			return swaps
		}
	}
}

// compare returns -1, 0 or 1.
func compare(a, b string) int {
	x, xok := number(a)
	y, yok := number(b)
	if xok && yok {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// number parses a cell as a finite number. "NaN", "Inf" and friends are text.
func number(cell string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
