package tetris

import "iter"

// Piece is the active piece: a mask placed on the grid with its top-left
// corner at (X, Y).
type Piece struct {
	Shape Shape
	X, Y  int
	Mask  Mask
}

func newPiece(s Shape, x int) *Piece {
	return &Piece{Shape: s, X: x, Mask: s.Mask()}
}

func (p *Piece) copy() *Piece {
	if p == nil {
		return nil
	}
	return &Piece{Shape: p.Shape, X: p.X, Y: p.Y, Mask: p.Mask.Clone()}
}

// Cells yields the grid coordinates (row, col) of every filled cell.
func (p *Piece) Cells() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for iy, r := range p.Mask {
			for ix, c := range r {
				if c && !yield(p.Y+iy, p.X+ix) {
					return
				}
			}
		}
	}
}

// Collides reports whether any filled cell of the piece lands on an occupied
// cell or outside the grid. The same check guards moves, rotations and spawns.
//
//	. 0 1 2 3 4 5 6 7 8 9		. 0 1
//	0 X X X X X O O X X X		0 O O
//	1 X X X X X O O X X X		1 O O
//	2 X X X X X X X X X X
func Collides(g *Grid, p *Piece) bool {
	for row, col := range p.Cells() {
		if g.Occupied(row, col) {
			return true
		}
	}
	return false
}
