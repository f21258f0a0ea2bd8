// Package session keeps the games hosted by the server, each one running in
// its own goroutine and identified by a uuid.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"blockdrop/tetris"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("game not found")

// Session is a running game plus the subscribers watching it.
type Session struct {
	ID      string
	Created time.Time

	game        *tetris.Game
	broadcaster *Broadcaster
	doneCh      chan struct{}
}

// Command queues a command for the game.
func (s *Session) Command(c tetris.Command) { s.game.Action(c) }

// Snapshot returns the current state of the game.
func (s *Session) Snapshot() *tetris.Snapshot { return s.game.Read() }

// Subscribe returns a channel receiving every snapshot the game publishes.
func (s *Session) Subscribe() chan *tetris.Snapshot { return s.broadcaster.Subscribe() }

func (s *Session) Unsubscribe(ch chan *tetris.Snapshot) { s.broadcaster.Unsubscribe(ch) }

// Done is closed once the game has stopped and every subscriber was closed.
func (s *Session) Done() <-chan struct{} { return s.doneCh }

func (s *Session) pump() {
	for u := range s.game.GetUpdate() {
		s.broadcaster.Publish(u)
	}
	s.broadcaster.Close()
	close(s.doneCh)
}

type Options struct {
	Logger *slog.Logger
	// NewGame builds the game for every new session.
	NewGame func() (*tetris.Game, error)
}

// Store holds the running sessions. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newGame  func() (*tetris.Game, error)
	logger   *slog.Logger
}

func NewStore(o *Options) *Store {
	s := &Store{sessions: make(map[string]*Session)}
	if o != nil {
		s.logger = o.Logger
		s.newGame = o.NewGame
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.newGame == nil {
		logger := s.logger
		s.newGame = func() (*tetris.Game, error) {
			return tetris.NewConfigurableGame(&tetris.Options{Logger: logger})
		}
	}
	return s
}

// Create starts a new game and registers it under a fresh ID.
func (s *Store) Create() (*Session, error) {
	g, err := s.newGame()
	if err != nil {
		return nil, fmt.Errorf("unable to create game: %w", err)
	}
	sess := &Session{
		ID:          uuid.New().String(),
		Created:     time.Now().UTC(),
		game:        g,
		broadcaster: NewBroadcaster(),
		doneCh:      make(chan struct{}),
	}
	if err := g.Start(); err != nil {
		return nil, fmt.Errorf("unable to start game: %w", err)
	}
	go sess.pump()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.logger.Info("session created", slog.String("id", sess.ID))
	return sess, nil
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Delete stops the game and forgets the session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.game.Stop()
	s.logger.Info("session deleted", slog.String("id", id))
	return nil
}

// Len returns the number of running sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops every session.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.game.Stop()
	}
}
