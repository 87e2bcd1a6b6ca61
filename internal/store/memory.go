// internal/store/memory.go
//
// In-memory storage for server-hosted matches.
//
// Characteristics:
//   - Matches are keyed by ID and copied in and out, so callers never share
//     a *game.Match with the map.
//   - Concurrency-safe via RWMutex.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/tictactoe/internal/game"
)

// ErrNotFound is returned by Get for unknown or deleted IDs.
var ErrNotFound = errors.New("match not found")

// Store persists matches between moves.
type Store interface {
	Save(ctx context.Context, m *game.Match) error
	Get(ctx context.Context, id string) (*game.Match, error)
	Delete(ctx context.Context, id string) error
	Len() int
}

type memory struct {
	mu      sync.RWMutex
	matches map[string]game.Match
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{matches: make(map[string]game.Match)}
}

func (m *memory) Save(_ context.Context, g *game.Match) error {
	if g == nil || g.ID == "" {
		return errors.New("match has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[g.ID] = *g
	return nil
}

func (m *memory) Get(_ context.Context, id string) (*game.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

// Delete removes id. Deleting an unknown id is not an error.
func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.matches, id)
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}
