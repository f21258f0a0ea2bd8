// Package tetris contains the logic of the game: a fixed size grid that
// accepts falling pieces, locks them on collision, clears complete rows and
// speeds up as the score grows.
package tetris

import (
	"errors"
	"fmt"
	"time"
)

const (
	Width  = 10 // Grid width in cells.
	Height = 20 // Grid height in cells.

	MaxVelocity = 500 * time.Millisecond // Tick period at score 0.
	MinVelocity = 150 * time.Millisecond // Tick period floor.

	PieceColor = "#ff0000" // Fill for the active piece.
	SolidColor = "#ffff00" // Fill for locked cells.
)

var (
	ErrNotInitialized      = errors.New("engine not initialized")
	ErrNoActivePiece       = errors.New("no active piece")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrMissingCollaborator = errors.New("missing collaborator")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrOutOfBounds         = errors.New("cells outside the grid")
	ErrInvalidCell         = errors.New("invalid cell")
)

type Command string

const (
	MoveLeft  Command = "left"   // Moves the piece one step to the left.
	MoveRight Command = "right"  // Moves the piece one step to the right.
	MoveDown  Command = "down"   // Moves the piece one step down.
	Rotate    Command = "rotate" // Rotates the piece clockwise.
	HardDrop  Command = "drop"   // Drops the piece down the stack.
)

// ParseCommand maps a command name to a Command.
func ParseCommand(s string) (Command, error) {
	switch c := Command(s); c {
	case MoveLeft, MoveRight, MoveDown, Rotate, HardDrop:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}

// Period returns the time between ticks for the given score. It shrinks one
// millisecond per point from MaxVelocity and never goes below MinVelocity.
func Period(score int) time.Duration {
	p := MaxVelocity - time.Duration(score)*time.Millisecond
	return min(MaxVelocity, max(MinVelocity, p))
}

// State is everything that changes during a game.
type State struct {
	Grid  *Grid
	Piece *Piece // nil between a lock and the next spawn.
	Score int
}

// Snapshot is a copy of the state that's safe to read concurrently.
type Snapshot struct {
	Grid  [][]bool
	Piece *Piece
	Score int
	// FinalScore is the score the last game ended with.
	FinalScore int
	// GameOver is set on the snapshot taken right after a game-over reset.
	GameOver bool
}

// Engine runs a single game. It is not safe for concurrent use: every call
// runs to completion before the next one, Game takes care of that.
type Engine struct {
	state       State
	ctrl        controller
	listeners   []func()
	initialized bool
	final       int
}

// NewEngine returns an engine drawing pieces from r.
func NewEngine(r Rand) *Engine {
	return &Engine{
		state: State{Grid: NewGrid(Width, Height)},
		ctrl:  controller{rand: r},
	}
}

// Initialize resets the grid and score. It must be called before Tick.
func (e *Engine) Initialize() error {
	if e.ctrl.rand == nil {
		return fmt.Errorf("%w: random source", ErrMissingCollaborator)
	}
	e.state.Grid.Reset()
	e.state.Score = 0
	e.state.Piece = nil
	e.final = 0
	e.initialized = true
	e.notify()
	return nil
}

// OnStateChanged registers f to be called after every change to the state.
func (e *Engine) OnStateChanged(f func()) {
	e.listeners = append(e.listeners, f)
}

// Tick advances the game one step: it spawns a piece if there's none, moves
// it down otherwise and locks it if it can't move. It reports whether the
// game was over and got reset.
//
// ErrOutOfBounds is returned after a complete tick when some locked cells
// fell outside the grid and were dropped.
func (e *Engine) Tick() (bool, error) {
	if !e.initialized {
		return false, ErrNotInitialized
	}
	var (
		gameOver bool
		final    int
		err      error
	)
	switch {
	case e.state.Piece == nil:
		final, gameOver = e.ctrl.spawn(&e.state)
	case e.ctrl.move(&e.state, 0, 1):
	default:
		var rejected int
		final, gameOver, rejected = e.ctrl.lock(&e.state)
		if rejected > 0 {
			err = fmt.Errorf("%w: %d cells dropped", ErrOutOfBounds, rejected)
		}
	}
	if gameOver {
		e.final = final
	}
	e.notify()
	return gameOver, err
}

// HandleCommand applies one player command. Blocked moves and rotations are
// no-ops. Commands that can't run in the current state return an error and
// leave the state untouched.
func (e *Engine) HandleCommand(c Command) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if e.state.Piece == nil {
		return ErrNoActivePiece
	}
	var changed bool
	switch c {
	case MoveLeft:
		changed = e.ctrl.move(&e.state, -1, 0)
	case MoveRight:
		changed = e.ctrl.move(&e.state, 1, 0)
	case MoveDown:
		changed = e.ctrl.move(&e.state, 0, 1)
	case Rotate:
		changed = e.ctrl.rotate(&e.state)
	case HardDrop:
		e.ctrl.drop(&e.state)
		changed = true
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c)
	}
	if changed {
		e.notify()
	}
	return nil
}

// Grid returns a copy of the grid cells.
func (e *Engine) Grid() [][]bool { return e.state.Grid.Snapshot() }

// ActivePiece returns a copy of the active piece, if any.
func (e *Engine) ActivePiece() (Piece, bool) {
	if e.state.Piece == nil {
		return Piece{}, false
	}
	return *e.state.Piece.copy(), true
}

func (e *Engine) Score() int { return e.state.Score }

// FinalScore returns the score the last game ended with, counting the rows
// cleared by the lock that ended it.
func (e *Engine) FinalScore() int { return e.final }

// Period returns the delay before the next tick.
func (e *Engine) Period() time.Duration { return Period(e.state.Score) }

// Snapshot returns a copy of the whole state.
func (e *Engine) Snapshot() *Snapshot {
	return &Snapshot{
		Grid:       e.state.Grid.Snapshot(),
		Piece:      e.state.Piece.copy(),
		Score:      e.state.Score,
		FinalScore: e.final,
	}
}

func (e *Engine) notify() {
	for _, f := range e.listeners {
		f()
	}
}
