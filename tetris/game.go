package tetris

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Options configures a Game. Nil fields get defaults.
type Options struct {
	Ticker Ticker
	Rand   Rand
	Logger *slog.Logger
}

// Game runs an Engine in its own goroutine. Ticks and commands go through a
// single loop so they never overlap, and every change is published as a
// Snapshot on the update channel.
type Game struct {
	updateCh chan *Snapshot
	actionCh chan Command
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	engine *Engine
	ticker Ticker // created on Start when Options has none.
	logger *slog.Logger
	mu     sync.RWMutex
	dirty  bool
}

func NewGame() *Game {
	g, _ := NewConfigurableGame(&Options{})
	return g
}

func NewConfigurableGame(o *Options) (*Game, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: options", ErrMissingCollaborator)
	}
	r := o.Rand
	if r == nil {
		r = DefaultRand()
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan Command),
		doneCh:   make(chan struct{}),
		engine:   NewEngine(r),
		ticker:   o.Ticker,
		logger:   logger,
	}
	g.engine.OnStateChanged(func() { g.dirty = true })
	return g, nil
}

// Start initializes the engine and runs the game loop until Stop is called.
// A game can only be started once.
func (g *Game) Start() error {
	err := ErrAlreadyStarted
	g.startOnce.Do(func() {
		g.mu.Lock()
		err = g.engine.Initialize()
		g.mu.Unlock()
		if err != nil {
			err = fmt.Errorf("unable to start game: %w", err)
			return
		}
		if g.ticker == nil {
			g.ticker = newWrappedTicker(MaxVelocity)
		}
		go g.listen()
	})
	return err
}

// Stop ends the game loop and closes the update channel. It is safe to call
// more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.doneCh) })
}

// Action queues a command for the game loop. It is dropped if the game was stopped.
func (g *Game) Action(c Command) {
	select {
	case g.actionCh <- c:
	case <-g.doneCh:
	}
}

// GetUpdate returns the channel snapshots are published on.
func (g *Game) GetUpdate() <-chan *Snapshot { return g.updateCh }

// Read returns a copy of the current state that's safe to read concurrently.
func (g *Game) Read() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engine.Snapshot()
}

func (g *Game) listen() {
	defer close(g.updateCh)
	defer g.ticker.Stop()

	// the first tick spawns the first piece right away instead of waiting a period.
	if !g.tick() {
		return
	}
	for {
		var ok bool
		select {
		case <-g.ticker.C():
			ok = g.tick()
		case a := <-g.actionCh:
			ok = g.action(a)
		case <-g.doneCh:
			return
		}
		if !ok {
			return
		}
	}
}

func (g *Game) tick() bool {
	g.mu.Lock()
	gameOver, err := g.engine.Tick()
	final := g.engine.FinalScore()
	period := g.engine.Period()
	g.mu.Unlock()
	switch {
	case errors.Is(err, ErrOutOfBounds):
		// the tick went through, only the cells outside the grid were lost.
		g.logger.Warn("piece locked outside the grid", slog.String("error", err.Error()))
	case err != nil:
		g.logger.Error("unable to tick", slog.String("error", err.Error()))
		return false
	}
	if gameOver {
		g.logger.Info("game over", slog.Int("score", final))
	}
	// the period depends on the score so the ticker is rescheduled every time.
	g.ticker.Reset(period)
	return g.publish(gameOver)
}

func (g *Game) action(c Command) bool {
	g.mu.Lock()
	err := g.engine.HandleCommand(c)
	g.mu.Unlock()
	switch {
	case errors.Is(err, ErrNoActivePiece):
		// between a lock and the next spawn there's no piece to move.
		g.logger.Debug("command without active piece", slog.String("command", string(c)))
	case err != nil:
		g.logger.Error("unable to handle command", slog.String("command", string(c)), slog.String("error", err.Error()))
	}
	return g.publish(false)
}

// publish sends a snapshot if the state changed since the last one.
// It returns false if the game was stopped while waiting for a reader.
func (g *Game) publish(gameOver bool) bool {
	g.mu.Lock()
	if !g.dirty {
		g.mu.Unlock()
		return true
	}
	g.dirty = false
	s := g.engine.Snapshot()
	g.mu.Unlock()
	s.GameOver = gameOver

	select {
	case g.updateCh <- s:
		return true
	case <-g.doneCh:
		return false
	}
}
