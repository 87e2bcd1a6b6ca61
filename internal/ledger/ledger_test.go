package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/tictactoe/internal/scoring"
)

func entry(user int64, score int) scoring.Entry {
	return scoring.Entry{
		ID:        uuid.NewString(),
		UserID:    user,
		Surface:   "chat:1:2",
		Score:     score,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// exerciseLedger runs the behaviour every backend must share.
func exerciseLedger(t *testing.T, l Ledger) {
	ctx := context.Background()

	empty, err := l.Top(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, e := range []scoring.Entry{entry(1, 3), entry(1, 9), entry(2, 9), entry(3, 1), entry(1, 0)} {
		require.NoError(t, l.Record(ctx, e))
	}

	top, err := l.Top(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{UserID: 1, Best: 9, Plays: 3},
		{UserID: 2, Best: 9, Plays: 1},
		{UserID: 3, Best: 1, Plays: 1},
	}, top)

	limited, err := l.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	dup := entry(4, 1)
	require.NoError(t, l.Record(ctx, dup))
	assert.Error(t, l.Record(ctx, dup), "entry ids are unique")
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scores.db")
	l, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer l.Close()

	exerciseLedger(t, l)
}

func TestSQLite_ReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	l, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, entry(7, 5)))
	require.NoError(t, l.Close())

	l, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer l.Close()

	top, err := l.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []Row{{UserID: 7, Best: 5, Plays: 1}}, top)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("LEDGER_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	l, err := Open(ctx, url)
	require.NoError(t, err)
	defer l.Close()

	pg := l.(*postgresLedger)
	_, err = pg.pool.Exec(ctx, `TRUNCATE score_entries`)
	require.NoError(t, err)

	exerciseLedger(t, l)
}
