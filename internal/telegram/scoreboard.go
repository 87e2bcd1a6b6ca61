package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/robalobadob/tictactoe/internal/scoring"
	"github.com/robalobadob/tictactoe/internal/session"
)

// Scoreboard is the Telegram game leaderboard, used as a scoring.Sink.
type Scoreboard struct {
	bot API
}

func NewScoreboard(bot API) *Scoreboard {
	return &Scoreboard{bot: bot}
}

// ForceSetScore calls setGameScore with force=true on the given surface.
func (s *Scoreboard) ForceSetScore(ctx context.Context, userID int64, score int, surface session.Surface) error {
	cfg := tgbotapi.SetGameScoreConfig{
		UserID: userID,
		Score:  score,
		Force:  true,
	}
	if surface.Inline() {
		cfg.InlineMessageID = surface.InlineMessageID
	} else {
		cfg.ChatID = surface.ChatID
		cfg.MessageID = surface.MessageID
	}
	_, err := withContext(ctx, func() (*tgbotapi.APIResponse, error) {
		return s.bot.Request(cfg)
	})
	if err != nil {
		return fmt.Errorf("setGameScore: %w", err)
	}
	return nil
}

// ReadHighScores calls getGameHighScores for userID on the given surface.
func (s *Scoreboard) ReadHighScores(ctx context.Context, userID int64, surface session.Surface) ([]scoring.Record, error) {
	cfg := tgbotapi.GetGameHighScoresConfig{UserID: userID}
	if surface.Inline() {
		cfg.InlineMessageID = surface.InlineMessageID
	} else {
		cfg.ChatID = surface.ChatID
		cfg.MessageID = surface.MessageID
	}
	rows, err := withContext(ctx, func() ([]tgbotapi.GameHighScore, error) {
		return s.bot.GetGameHighScores(cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("getGameHighScores: %w", err)
	}

	out := make([]scoring.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, scoring.Record{
			Position: r.Position,
			UserID:   r.User.ID,
			Name:     displayName(r.User),
			Score:    r.Score,
		})
	}
	return out, nil
}

// withContext runs call, which cannot be cancelled itself, and returns
// ctx.Err() as soon as ctx is done. A result arriving after that is dropped;
// the call goroutine finishes when the HTTP client's own timeout fires.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func displayName(u tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}
