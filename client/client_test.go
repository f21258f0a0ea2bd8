package client

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"blockdrop/tetris"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTetris struct {
	updateCh chan *tetris.Snapshot
	actions  chan tetris.Command
	startErr error
	stopOnce sync.Once
}

func newMockTetris() *mockTetris {
	return &mockTetris{
		updateCh: make(chan *tetris.Snapshot),
		actions:  make(chan tetris.Command, 20),
	}
}

func (m *mockTetris) Start() error                       { return m.startErr }
func (m *mockTetris) GetUpdate() <-chan *tetris.Snapshot { return m.updateCh }
func (m *mockTetris) Stop()                              { m.stopOnce.Do(func() { close(m.updateCh) }) }
func (m *mockTetris) Action(a tetris.Command) {
	m.actions <- a
	m.updateCh <- &tetris.Snapshot{}
}

type mockRender struct {
	mu         sync.Mutex
	lobbyMsgs  []string
	gameCount  int
	resetCount int
}

func (m *mockRender) lobby(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobbyMsgs = append(m.lobbyMsgs, msg)
}

func (m *mockRender) game(*tetris.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameCount++
}

func (m *mockRender) reset(bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCount++
}

func (m *mockRender) lastLobby() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lobbyMsgs) == 0 {
		return "<none>"
	}
	return m.lobbyMsgs[len(m.lobbyMsgs)-1]
}

func (m *mockRender) games() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameCount
}

func TestClient(t *testing.T) {
	render := &mockRender{}
	local := newMockTetris()
	remote := newMockTetris()
	remote.startErr = errors.New("connection refused")
	kCh := make(chan keyboard.KeyEvent)
	cl := &Client{
		newGame: func(online bool) tetrisGame {
			if online {
				return remote
			}
			return local
		},
		render: render,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})),
		kbCh:   kCh,
		state:  &state{current: lobby},
	}

	doneCh := make(chan struct{})
	go func() { cl.Start(); close(doneCh) }()

	// 'p' starts a local game.
	kCh <- keyboard.KeyEvent{Rune: 'p'}
	assert.Eventually(t, func() bool {
		s, g := cl.state.get()
		return s == playing && g == local
	}, time.Second, 5*time.Millisecond)

	// while in game, keys should direct to tetris actions.
	actions := []struct {
		key    keyboard.KeyEvent
		action tetris.Command
	}{
		{key: keyboard.KeyEvent{Rune: 's'}, action: tetris.MoveDown},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, action: tetris.MoveDown},
		{key: keyboard.KeyEvent{Rune: 'a'}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Rune: 'd'}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Rune: 'w'}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeySpace}, action: tetris.HardDrop},
	}
	for i, a := range actions {
		t.Run(fmt.Sprintf("key %v", a.key), func(t *testing.T) {
			kCh <- a.key
			select {
			case got := <-local.actions:
				assert.Equal(t, a.action, got)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for action")
			}
			assert.Eventually(t, func() bool { return render.games() == i+2 }, time.Second, 5*time.Millisecond)
		})
	}

	// keys without a command are ignored.
	kCh <- keyboard.KeyEvent{Rune: 'x'}
	assert.Empty(t, local.actions)

	// esc stops the game and goes back to the lobby.
	kCh <- keyboard.KeyEvent{Key: keyboard.KeyEsc}
	assert.Eventually(t, func() bool {
		s, _ := cl.state.get()
		return s == lobby
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return render.lastLobby() == "" }, time.Second, 5*time.Millisecond)

	// a remote game that can't start stays in the lobby.
	kCh <- keyboard.KeyEvent{Rune: 'o'}
	assert.Eventually(t, func() bool { return render.lastLobby() == "something went wrong" }, time.Second, 5*time.Millisecond)
	s, _ := cl.state.get()
	assert.Equal(t, lobby, s)

	kCh <- keyboard.KeyEvent{Rune: 'q'}
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the client to quit")
	}
}

func TestClientQuitWhilePlaying(t *testing.T) {
	local := newMockTetris()
	kCh := make(chan keyboard.KeyEvent)
	cl := &Client{
		newGame: func(bool) tetrisGame { return local },
		render:  &mockRender{},
		logger:  slog.Default(),
		kbCh:    kCh,
		state:   &state{current: lobby},
	}
	doneCh := make(chan struct{})
	go func() { cl.Start(); close(doneCh) }()

	kCh <- keyboard.KeyEvent{Rune: 'p'}
	kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the client to quit")
	}
	_, ok := <-local.updateCh
	assert.False(t, ok, "wanted the game to be stopped")
}

func TestNewMissingCollaborator(t *testing.T) {
	_, err := New(nil, &Options{Writer: os.Stdout})
	require.ErrorIs(t, err, tetris.ErrMissingCollaborator)
	_, err = New(slog.Default(), &Options{})
	require.ErrorIs(t, err, tetris.ErrMissingCollaborator)
	_, err = New(slog.Default(), nil)
	require.ErrorIs(t, err, tetris.ErrMissingCollaborator)
}
