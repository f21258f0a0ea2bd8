package tetris_test

import (
	"blockdrop/tetris"
	"errors"
	"testing"
	"time"
)

func next(t *testing.T, g *tetris.Game) *tetris.Snapshot {
	t.Helper()
	select {
	case s, ok := <-g.GetUpdate():
		if !ok {
			t.Fatal("update channel closed")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for update")
	}
	return nil
}

func TestUpdate(t *testing.T) {
	game, ticker := tetris.NewTestGame(tetris.O)
	if err := game.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer game.Stop()

	s := next(t, game)
	if s.Piece == nil || s.Piece.Y != 0 || s.Piece.X != 5 {
		t.Fatalf("wanted the first piece at (5, 0), got %+v", s.Piece)
	}

	ticker.Tick()
	s = next(t, game)
	if s.Piece.Y != 1 {
		t.Errorf("wanted piece to move down on tick, got Y %d", s.Piece.Y)
	}

	game.Action(tetris.MoveLeft)
	s = next(t, game)
	if s.Piece.X != 4 {
		t.Errorf("wanted piece to move left, got X %d", s.Piece.X)
	}

	game.Action(tetris.HardDrop)
	s = next(t, game)
	if s.Piece.Y != tetris.Height-2 {
		t.Errorf("wanted piece to drop to Y %d, got %d", tetris.Height-2, s.Piece.Y)
	}

	ticker.Tick()
	s = next(t, game)
	if !s.Grid[tetris.Height-1][4] || s.Piece.Y != 0 {
		t.Errorf("wanted piece to lock and a new one to spawn, got %+v", s)
	}
	if got := game.Read(); got.Piece.Y != 0 {
		t.Errorf("wanted Read() to match the last update, got %+v", got.Piece)
	}
}

func TestTickerIsRescheduled(t *testing.T) {
	game, ticker := tetris.NewTestGame(tetris.O)
	if err := game.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next(t, game)
	if !ticker.IsReset() {
		t.Errorf("Expected ticker to be reset")
	}
	if ticker.Period() != tetris.MaxVelocity {
		t.Errorf("wanted period %v, got %v", tetris.MaxVelocity, ticker.Period())
	}
	game.Stop()
	for range game.GetUpdate() {
	}
	if !ticker.IsStop() {
		t.Errorf("Expected ticker to be stopped")
	}
}

func TestStartStop(t *testing.T) {
	game, _ := tetris.NewTestGame(tetris.T)
	if err := game.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	game.Stop()
	game.Stop()
	// actions after stop are dropped instead of blocking.
	game.Action(tetris.MoveDown)

	done := make(chan struct{})
	go func() {
		for range game.GetUpdate() {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the update channel to close")
	}
}

func TestStartTwice(t *testing.T) {
	game, _ := tetris.NewTestGame(tetris.O)
	if err := game.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := game.Start(); !errors.Is(err, tetris.ErrAlreadyStarted) {
		t.Errorf("wanted ErrAlreadyStarted, got %v", err)
	}
	game.Stop()
	// a single loop owns the update channel, so it closes once.
	for range game.GetUpdate() {
	}
}

func TestGameOverUpdate(t *testing.T) {
	game, ticker := tetris.NewTestGame(tetris.I)
	if err := game.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer game.Stop()
	next(t, game)

	// stack I pieces on the spawn column until the next one has no room.
	var gameOver bool
	for range tetris.Height {
		game.Action(tetris.HardDrop)
		next(t, game)
		ticker.Tick()
		if s := next(t, game); s.GameOver {
			gameOver = true
			if s.Score != 0 {
				t.Errorf("wanted score to reset, got %d", s.Score)
			}
			if s.FinalScore != 0 {
				t.Errorf("wanted final score 0 with no rows cleared, got %d", s.FinalScore)
			}
			for _, r := range s.Grid {
				for _, c := range r {
					if c {
						t.Fatalf("wanted an empty grid after game over")
					}
				}
			}
			break
		}
	}
	if !gameOver {
		t.Errorf("expected game over")
	}
}

func TestNewConfigurableGame(t *testing.T) {
	if _, err := tetris.NewConfigurableGame(nil); !errors.Is(err, tetris.ErrMissingCollaborator) {
		t.Errorf("wanted ErrMissingCollaborator, got %v", err)
	}
	g, err := tetris.NewConfigurableGame(&tetris.Options{})
	if err != nil || g == nil {
		t.Errorf("wanted a game with defaults, got %v", err)
	}
}
