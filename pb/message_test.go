package pb

import (
	"testing"

	"blockdrop/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestCommand(t *testing.T) {
	c, err := CommandFrom(NewCommand(tetris.Rotate))
	require.NoError(t, err)
	assert.Equal(t, tetris.Rotate, c)

	_, err = CommandFrom(&structpb.Struct{})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = CommandFrom(NewCommand("jump"))
	assert.ErrorIs(t, err, tetris.ErrUnknownCommand)
}

func TestSnapshot(t *testing.T) {
	e := tetris.NewTestEngine(tetris.J)
	require.NoError(t, e.HandleCommand(tetris.HardDrop))
	_, err := e.Tick()
	require.NoError(t, err)
	want := e.Snapshot()

	msg, err := NewSnapshot("game-1", want)
	require.NoError(t, err)
	rows := msg.GetFields()["rows"].GetListValue().GetValues()
	require.Len(t, rows, tetris.Height)
	assert.Equal(t, "0000011100", rows[tetris.Height-1].GetStringValue())
	assert.Equal(t, "0000010000", rows[tetris.Height-2].GetStringValue())

	id, got, err := SnapshotFrom(msg)
	require.NoError(t, err)
	assert.Equal(t, "game-1", id)
	assert.Equal(t, want, got)
}

func TestSnapshotWithoutPiece(t *testing.T) {
	msg, err := NewSnapshot("game-2", &tetris.Snapshot{Grid: [][]bool{{true, false}}, GameOver: true, FinalScore: 30})
	require.NoError(t, err)
	_, got, err := SnapshotFrom(msg)
	require.NoError(t, err)
	assert.Nil(t, got.Piece)
	assert.True(t, got.GameOver)
	assert.Equal(t, 30, got.FinalScore)
	assert.Equal(t, [][]bool{{true, false}}, got.Grid)
}

func TestSnapshotMalformed(t *testing.T) {
	tests := []struct {
		name string
		msg  map[string]any
	}{
		{name: "missing rows", msg: map[string]any{"score": 1}},
		{name: "invalid cell", msg: map[string]any{"rows": []any{"01x"}}},
		{name: "invalid mask cell", msg: map[string]any{
			"rows":  []any{"00"},
			"piece": map[string]any{"shape": "O", "mask": []any{"2"}},
		}},
		{name: "unknown shape", msg: map[string]any{
			"rows":  []any{"00"},
			"piece": map[string]any{"shape": "W", "mask": []any{"1"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := structpb.NewStruct(tt.msg)
			require.NoError(t, err)
			_, _, err = SnapshotFrom(m)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
