package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/tictactoe/internal/game"
)

func TestMemory_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	m := game.NewMatch()

	require.NoError(t, s.Save(ctx, m))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, *m, *got)

	require.NoError(t, s.Delete(ctx, m.ID))
	_, err = s.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, m.ID))
}

func TestMemory_CopiesMatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	m := game.NewMatch()
	require.NoError(t, s.Save(ctx, m))

	m.Board[0] = game.X
	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Empty, got.Board[0])

	got.Board[1] = game.O
	again, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Empty, again.Board[1])
}

func TestMemory_RejectsMissingID(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.Save(context.Background(), &game.Match{}))
	assert.Error(t, s.Save(context.Background(), nil))
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := &game.Match{ID: fmt.Sprintf("m-%d", i), Turn: game.X}
			_ = s.Save(ctx, m)
			_, _ = s.Get(ctx, m.ID)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
