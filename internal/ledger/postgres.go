package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robalobadob/tictactoe/internal/scoring"
)

type postgresLedger struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to the database at url and migrates it.
func OpenPostgres(ctx context.Context, url string) (Ledger, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	l := &postgresLedger{pool: pool}
	if err := migrate(ctx, l, "postgres"); err != nil {
		pool.Close()
		return nil, err
	}
	return l, nil
}

func (l *postgresLedger) Record(ctx context.Context, e scoring.Entry) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO score_entries(id, user_id, surface, score, created_at) VALUES($1,$2,$3,$4,$5)`,
		e.ID, e.UserID, e.Surface, e.Score, e.CreatedAt,
	)
	return err
}

func (l *postgresLedger) Top(ctx context.Context, limit int) ([]Row, error) {
	limit = topLimit(limit)
	rows, err := l.pool.Query(ctx, `
        SELECT user_id, MAX(score), COUNT(1)
        FROM score_entries
        GROUP BY user_id
        ORDER BY MAX(score) DESC, user_id ASC
        LIMIT $1`, limit,
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

func (l *postgresLedger) Close() error {
	l.pool.Close()
	return nil
}

func (l *postgresLedger) ensureTable(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`)
	return err
}

func (l *postgresLedger) applied(ctx context.Context, name string) (bool, error) {
	var done int
	err := l.pool.QueryRow(ctx, `SELECT 1 FROM _migrations WHERE name=$1`, name).Scan(&done)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (l *postgresLedger) apply(ctx context.Context, name, sqlText string) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sqlText); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO _migrations(name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit(ctx)
}
