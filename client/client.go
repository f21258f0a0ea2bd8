// Package client is the terminal front end: it reads the keyboard, drives a
// local or server hosted game and draws it with ANSI escape codes.
package client

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"blockdrop/tetris"

	"github.com/eiannone/keyboard"
	"google.golang.org/grpc"
)

type clientState int

const (
	lobby clientState = iota
	playing
)

type tetrisGame interface {
	Start() error
	GetUpdate() <-chan *tetris.Snapshot
	Action(tetris.Command)
	Stop()
}

type renderer interface {
	lobby(msg string)
	game(*tetris.Snapshot)
	reset(online bool)
}

// state is shared between the keyboard listener and the game listener.
type state struct {
	current clientState
	game    tetrisGame
	mu      sync.Mutex
}

func (s *state) get() (clientState, tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.game
}

func (s *state) set(c clientState, g tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
	s.game = g
}

type Client struct {
	newGame func(online bool) tetrisGame
	render  renderer
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	state   *state
	wg      sync.WaitGroup
}

type Options struct {
	// Address of the server for online games.
	Address string
	// Writer the game is drawn on.
	Writer io.Writer
	// DialOptions are added to the gRPC client options for online games.
	DialOptions []grpc.DialOption
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	switch {
	case l == nil:
		return nil, fmt.Errorf("%w: logger", tetris.ErrMissingCollaborator)
	case o == nil || o.Writer == nil:
		return nil, fmt.Errorf("%w: writer", tetris.ErrMissingCollaborator)
	}
	r, err := newRender(o.Writer, l)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		newGame: func(online bool) tetrisGame {
			if online {
				return newRemoteGame(o.Address, l, o.DialOptions...)
			}
			g, _ := tetris.NewConfigurableGame(&tetris.Options{Logger: l})
			return g
		},
		render: r,
		logger: l,
		kbCh:   kb,
		state:  &state{current: lobby},
	}, nil
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.reset(false)
	c.render.game(nil)
	c.render.lobby("")
	c.listenKB()
	if _, g := c.state.get(); g != nil {
		g.Stop()
	}
	c.wg.Wait()
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		current, game := c.state.get()
		switch current {
		case lobby:
			switch event.Rune {
			case 'p':
				c.play(false)
			case 'o':
				c.render.lobby("connecting...")
				c.play(true)
			case 'q':
				return
			}
		case playing:
			if event.Key == keyboard.KeyEsc {
				game.Stop()
				continue
			}
			if a, ok := command(event); ok {
				game.Action(a)
			}
		}
	}
}

func command(event keyboard.KeyEvent) (tetris.Command, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'w':
		return tetris.Rotate, true
	case event.Key == keyboard.KeySpace:
		return tetris.HardDrop, true
	}
	return "", false
}

func (c *Client) play(online bool) {
	g := c.newGame(online)
	if err := g.Start(); err != nil {
		c.logger.Error("unable to start game", slog.Bool("online", online), slog.String("error", err.Error()))
		c.render.lobby("something went wrong")
		return
	}
	c.state.set(playing, g)
	c.render.reset(online)
	c.wg.Add(1)
	go c.listenTetris(g)
}

// listenTetris draws every update until the game stops, then goes back to the lobby.
func (c *Client) listenTetris(g tetrisGame) {
	defer c.wg.Done()
	for u := range g.GetUpdate() {
		c.render.game(u)
	}
	c.state.set(lobby, nil)
	c.render.lobby("")
}
