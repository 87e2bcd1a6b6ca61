// internal/ledger/ledger.go
//
// Local history of accepted score submissions.
// Responsibilities:
//   - Picking a backend from the DSN (SQLite file or Postgres URL).
//   - Applying embedded migrations, recorded in _migrations.
//   - Recording entries and listing each player's best score.
//
// The ledger is advisory: the Telegram leaderboard stays authoritative.

package ledger

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/internal/scoring"
)

//go:embed migrations
var migrations embed.FS

// DefaultTopLimit applies when Top is called with limit <= 0.
const DefaultTopLimit = 20

// Row is one player's aggregate in the ledger.
type Row struct {
	UserID int64 `json:"userId"`
	Best   int   `json:"best"`
	Plays  int   `json:"plays"`
}

// Ledger records accepted submissions. It satisfies scoring.Recorder.
type Ledger interface {
	Record(ctx context.Context, e scoring.Entry) error
	Top(ctx context.Context, limit int) ([]Row, error)
	Close() error
}

// Open picks the backend from dsn: postgres:// and postgresql:// URLs use
// Postgres, anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (Ledger, error) {
	if dsn == "" {
		return nil, fmt.Errorf("ledger: empty dsn")
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

// migrationTarget is what a backend provides to run migrations.
type migrationTarget interface {
	ensureTable(ctx context.Context) error
	applied(ctx context.Context, name string) (bool, error)
	apply(ctx context.Context, name, sqlText string) error
}

// migrate applies migrations/<dialect>/*.sql in lexical order, skipping
// files already listed in _migrations.
func migrate(ctx context.Context, t migrationTarget, dialect string) error {
	if err := t.ensureTable(ctx); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		done, err := t.applied(ctx, name)
		if err != nil {
			return fmt.Errorf("query _migrations: %w", err)
		}
		if done {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		body, err := fs.ReadFile(migrations, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := t.apply(ctx, name, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		log.Info().Str("migration", name).Str("dialect", dialect).Msg("applied")
	}
	return nil
}

func topLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	return limit
}
