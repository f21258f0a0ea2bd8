package web

import (
	"blockdrop/tetris"
	"blockdrop/web/components"
	"blockdrop/web/viewmodel"

	"github.com/a-h/templ"
)

type pieceView struct {
	Shape string   `json:"shape" msgpack:"shape"`
	X     int      `json:"x" msgpack:"x"`
	Y     int      `json:"y" msgpack:"y"`
	Mask  []string `json:"mask" msgpack:"mask"`
}

// gameView is what the HTTP and websocket endpoints return.
type gameView struct {
	ID         string     `json:"id" msgpack:"id"`
	Score      int        `json:"score" msgpack:"score"`
	FinalScore int        `json:"finalScore" msgpack:"finalScore"`
	GameOver   bool       `json:"gameOver" msgpack:"gameOver"`
	PeriodMs   int64      `json:"periodMs" msgpack:"periodMs"`
	Rows       []string   `json:"rows" msgpack:"rows"`
	Piece      *pieceView `json:"piece,omitempty" msgpack:"piece,omitempty"`
}

func toGameView(id string, s *tetris.Snapshot) gameView {
	v := gameView{
		ID:         id,
		Score:      s.Score,
		FinalScore: s.FinalScore,
		GameOver:   s.GameOver,
		PeriodMs:   tetris.Period(s.Score).Milliseconds(),
		Rows:       tetris.EncodeRows(s.Grid),
	}
	if s.Piece != nil {
		v.Piece = &pieceView{
			Shape: s.Piece.Shape.String(),
			X:     s.Piece.X,
			Y:     s.Piece.Y,
			Mask:  tetris.EncodeRows(s.Piece.Mask),
		}
	}
	return v
}

// toBoard lays the active piece over the locked cells, each with its own fill.
func toBoard(id string, s *tetris.Snapshot) viewmodel.Board {
	fills := make([][]string, len(s.Grid))
	for y, r := range s.Grid {
		fills[y] = make([]string, len(r))
		for x, c := range r {
			if c {
				fills[y][x] = tetris.SolidColor
			}
		}
	}
	if s.Piece != nil {
		for row, col := range s.Piece.Cells() {
			if row >= 0 && row < len(fills) && col >= 0 && col < len(fills[row]) {
				fills[row][col] = tetris.PieceColor
			}
		}
	}
	return viewmodel.Board{ID: id, Score: s.Score, Fills: fills}
}

func boardView(id string, s *tetris.Snapshot) templ.Component {
	return components.Board(toBoard(id, s))
}
