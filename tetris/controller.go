package tetris

import "math/rand/v2"

// Rand is the source used to pick the next shape.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from math/rand/v2's global source.
func DefaultRand() Rand { return globalRand{} }

// controller moves the active piece around the state it is given. Every
// operation tries the change first and rolls it back if the piece collides.
type controller struct {
	rand Rand
}

// spawn draws a new piece at the top center of the grid. If the new piece
// collides right away the game is over: the grid and score reset and another
// piece spawns on the empty grid. final is the score before the reset.
func (c *controller) spawn(s *State) (final int, gameOver bool) {
	s.Piece = c.draw(s.Grid.Width())
	if !Collides(s.Grid, s.Piece) {
		return 0, false
	}
	final = s.Score
	s.Grid.Reset()
	s.Score = 0
	s.Piece = c.draw(s.Grid.Width())
	return final, true
}

func (c *controller) draw(width int) *Piece {
	shape := Shape(c.rand.IntN(Shapes()))
	// round(width/2)
	return newPiece(shape, (width+1)/2)
}

func (c *controller) move(s *State, dx, dy int) bool {
	s.Piece.X += dx
	s.Piece.Y += dy
	if Collides(s.Grid, s.Piece) {
		s.Piece.X -= dx
		s.Piece.Y -= dy
		return false
	}
	return true
}

// rotate turns the piece clockwise in place. There are no wall kicks: a
// rotation that collides is rejected and the mask is left as it was.
func (c *controller) rotate(s *State) bool {
	original := s.Piece.Mask
	s.Piece.Mask = original.Rotate()
	if Collides(s.Grid, s.Piece) {
		s.Piece.Mask = original
		return false
	}
	return true
}

// drop moves the piece down until the next step would collide. It doesn't
// lock the piece, the next tick does.
func (c *controller) drop(s *State) {
	for c.move(s, 0, 1) {
	}
}

// lock writes the piece into the grid, clears complete rows and spawns the
// next piece. rejected counts the cells that fell outside the grid.
func (c *controller) lock(s *State) (final int, gameOver bool, rejected int) {
	for row, col := range s.Piece.Cells() {
		if !s.Grid.SetOccupied(row, col) {
			rejected++
		}
	}
	s.Piece = nil
	s.Score += reviewRows(s.Grid) * s.Grid.Width()
	final, gameOver = c.spawn(s)
	return final, gameOver, rejected
}

// reviewRows clears every complete row and returns how many were cleared.
// Clearing a row shifts only the rows above it, which were already checked,
// so a single top to bottom pass is enough even for adjacent full rows.
func reviewRows(g *Grid) int {
	var cleared int
	for row := range g.Height() {
		if g.RowComplete(row) {
			g.ClearRow(row)
			cleared++
		}
	}
	return cleared
}
