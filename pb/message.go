package pb

import (
	"errors"
	"fmt"

	"blockdrop/tetris"

	"google.golang.org/protobuf/types/known/structpb"
)

var ErrMalformed = errors.New("malformed message")

// NewCommand builds the message a client sends to apply a command:
//
//	{"command": "left"}
func NewCommand(c tetris.Command) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"command": structpb.NewStringValue(string(c)),
	}}
}

// CommandFrom reads a command message.
func CommandFrom(m *structpb.Struct) (tetris.Command, error) {
	v, ok := m.GetFields()["command"]
	if !ok {
		return "", fmt.Errorf("%w: missing command", ErrMalformed)
	}
	return tetris.ParseCommand(v.GetStringValue())
}

// NewSnapshot builds the message the server streams after every change.
// Rows are strings of '0' and '1', top to bottom:
//
//	{
//	  "gameId": "4a1c...",
//	  "score": 20,
//	  "finalScore": 0,
//	  "gameOver": false,
//	  "rows": ["0000000000", ...],
//	  "piece": {"shape": "J", "x": 5, "y": 0, "mask": ["100", "111"]}
//	}
func NewSnapshot(gameID string, s *tetris.Snapshot) (*structpb.Struct, error) {
	m := map[string]any{
		"gameId":   gameID,
		"score":      s.Score,
		"finalScore": s.FinalScore,
		"gameOver":   s.GameOver,
		"rows":       encodeRows(s.Grid),
	}
	if s.Piece != nil {
		m["piece"] = map[string]any{
			"shape": s.Piece.Shape.String(),
			"x":     s.Piece.X,
			"y":     s.Piece.Y,
			"mask":  encodeRows(s.Piece.Mask),
		}
	}
	msg, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return msg, nil
}

// SnapshotFrom reads a snapshot message and returns the game ID it belongs to.
func SnapshotFrom(m *structpb.Struct) (string, *tetris.Snapshot, error) {
	f := m.GetFields()
	rows, err := decodeRows(f["rows"].GetListValue())
	if err != nil {
		return "", nil, fmt.Errorf("rows: %w", err)
	}
	s := &tetris.Snapshot{
		Grid:       rows,
		Score:      int(f["score"].GetNumberValue()),
		FinalScore: int(f["finalScore"].GetNumberValue()),
		GameOver:   f["gameOver"].GetBoolValue(),
	}
	if p := f["piece"].GetStructValue(); p != nil {
		pf := p.GetFields()
		mask, err := decodeRows(pf["mask"].GetListValue())
		if err != nil {
			return "", nil, fmt.Errorf("piece mask: %w", err)
		}
		shape, ok := tetris.ParseShape(pf["shape"].GetStringValue())
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown shape %q", ErrMalformed, pf["shape"].GetStringValue())
		}
		s.Piece = &tetris.Piece{
			Shape: shape,
			X:     int(pf["x"].GetNumberValue()),
			Y:     int(pf["y"].GetNumberValue()),
			Mask:  mask,
		}
	}
	return f["gameId"].GetStringValue(), s, nil
}

func encodeRows(rows [][]bool) []any {
	encoded := tetris.EncodeRows(rows)
	out := make([]any, len(encoded))
	for i, r := range encoded {
		out[i] = r
	}
	return out
}

func decodeRows(l *structpb.ListValue) ([][]bool, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: missing rows", ErrMalformed)
	}
	encoded := make([]string, len(l.GetValues()))
	for i, v := range l.GetValues() {
		encoded[i] = v.GetStringValue()
	}
	rows, err := tetris.DecodeRows(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return rows, nil
}
