package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/tictactoe/internal/scoring"
)

type sqliteLedger struct {
	db *sql.DB
}

// OpenSQLite opens (creating if missing) the database file at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string) (Ledger, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	l := &sqliteLedger{db: db}
	if err := migrate(ctx, l, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *sqliteLedger) Record(ctx context.Context, e scoring.Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO score_entries(id, user_id, surface, score, created_at) VALUES(?,?,?,?,?)`,
		e.ID, e.UserID, e.Surface, e.Score, e.CreatedAt,
	)
	return err
}

func (l *sqliteLedger) Top(ctx context.Context, limit int) ([]Row, error) {
	limit = topLimit(limit)
	rows, err := l.db.QueryContext(ctx, `
        SELECT user_id, MAX(score), COUNT(1)
        FROM score_entries
        GROUP BY user_id
        ORDER BY MAX(score) DESC, user_id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.UserID, &r.Best, &r.Plays); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *sqliteLedger) Close() error { return l.db.Close() }

func (l *sqliteLedger) ensureTable(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`)
	return err
}

func (l *sqliteLedger) applied(ctx context.Context, name string) (bool, error) {
	var done int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, name).Scan(&done)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (l *sqliteLedger) apply(ctx context.Context, name, sqlText string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, sqlText); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
