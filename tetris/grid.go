package tetris

import (
	"fmt"
	"slices"
	"strings"
)

// Grid is the playfield.
// Rows are 0 > Height-1 top to bottom and represent the Y axis.
// Columns are 0 > Width-1 left to right and represent the X axis.
type Grid struct {
	width, height int
	rows          [][]bool
}

// NewGrid returns an empty grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	g := &Grid{width: width, height: height}
	g.Reset()
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Reset replaces every row with an empty one.
func (g *Grid) Reset() {
	g.rows = make([][]bool, g.height)
	for i := range g.rows {
		g.rows[i] = make([]bool, g.width)
	}
}

// Occupied reports whether the cell is filled. Cells outside the grid are
// never free, which is what keeps pieces inside the walls and above the floor.
func (g *Grid) Occupied(row, col int) bool {
	if !g.contains(row, col) {
		return true
	}
	return g.rows[row][col]
}

// SetOccupied fills the cell. It returns false, leaving the grid untouched,
// if the cell is outside the grid.
func (g *Grid) SetOccupied(row, col int) bool {
	if !g.contains(row, col) {
		return false
	}
	g.rows[row][col] = true
	return true
}

// RowComplete reports whether every cell in the row is filled.
func (g *Grid) RowComplete(row int) bool {
	if row < 0 || row >= g.height {
		return false
	}
	return !slices.Contains(g.rows[row], false)
}

// ClearRow removes the row and prepends an empty one, so everything above
// it shifts down by one and the grid keeps its height.
func (g *Grid) ClearRow(row int) {
	if row < 0 || row >= g.height {
		return
	}
	g.rows = slices.Delete(g.rows, row, row+1)
	g.rows = slices.Insert(g.rows, 0, make([]bool, g.width))
}

// Snapshot returns a copy of the cells that's safe to hand to a renderer.
func (g *Grid) Snapshot() [][]bool {
	s := make([][]bool, len(g.rows))
	for i := range g.rows {
		s[i] = slices.Clone(g.rows[i])
	}
	return s
}

func (g *Grid) contains(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// EncodeRows writes every row as a string of '0' and '1' cells.
func EncodeRows(rows [][]bool) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		var b strings.Builder
		for _, c := range r {
			if c {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		out[i] = b.String()
	}
	return out
}

// DecodeRows reads rows written by EncodeRows.
func DecodeRows(rows []string) ([][]bool, error) {
	out := make([][]bool, len(rows))
	for i, s := range rows {
		out[i] = make([]bool, len(s))
		for j, c := range s {
			switch c {
			case '1':
				out[i][j] = true
			case '0':
			default:
				return nil, fmt.Errorf("%w: %q in row %d", ErrInvalidCell, c, i)
			}
		}
	}
	return out, nil
}
