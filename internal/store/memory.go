// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live round engines for the HTTP server; durable history and
// leaderboards live in SQLite (see internal/scores and internal/daily).
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Every Save/Get marks the game as used; Prune evicts games idle since a cutoff.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/middlefiddle/internal/game"
)

// ErrNotFound is returned when no game has the requested ID.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for live games.
type Store interface {
	// Save persists or updates a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete removes a game; deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// Prune removes games last used before cutoff and returns them.
	Prune(ctx context.Context, cutoff time.Time) []*game.Game

	// Len reports how many games are held.
	Len() int
}

type entry struct {
	g    *game.Game
	used time.Time
}

type memory struct {
	mu    sync.RWMutex
	games map[string]*entry
	now   func() time.Time
}

// Option configures a memory store.
type Option func(*memory)

// WithClock sets the clock used to stamp game usage.
func WithClock(now func() time.Time) Option { return func(m *memory) { m.now = now } }

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{games: make(map[string]*entry), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = &entry{g: g, used: m.now()}
	return nil
}

// Get takes the write lock because it refreshes the usage stamp.
func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.used = m.now()
	return e.g, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) []*game.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*game.Game
	for id, e := range m.games {
		if e.used.Before(cutoff) {
			out = append(out, e.g)
			delete(m.games, id)
		}
	}
	return out
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
