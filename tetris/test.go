package tetris

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	period      time.Duration
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

func (m *MockTicker) Reset(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
	m.period = d
}

func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// Period returns the duration of the last Reset.
func (m *MockTicker) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}

// SequenceRand draws the given shapes in order, starting over when it runs out.
type SequenceRand struct {
	shapes []Shape
	next   int
	mu     sync.Mutex
}

func NewSequenceRand(shapes ...Shape) *SequenceRand {
	return &SequenceRand{shapes: shapes}
}

func (r *SequenceRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shapes) == 0 {
		return 0
	}
	s := int(r.shapes[r.next%len(r.shapes)])
	r.next++
	return s % n
}

// NewTestEngine creates an initialized engine whose pieces are always the given shape,
// with one piece already spawned.
func NewTestEngine(shape Shape) *Engine {
	e := NewEngine(NewSequenceRand(shape))
	_ = e.Initialize()
	_, _ = e.Tick()
	return e
}

// NewTestGame creates a game with a manual ticker that always draws the given shape.
func NewTestGame(shape Shape) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	g, _ := NewConfigurableGame(&Options{Ticker: ticker, Rand: NewSequenceRand(shape)})
	return g, ticker
}
