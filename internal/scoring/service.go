// Package scoring accepts score writes and high-score reads from the browser,
// authenticated only by the signed session the bot handed out.
package scoring

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/internal/session"
)

// Record is one leaderboard row as reported by the platform.
type Record struct {
	Position int    `json:"position"`
	UserID   int64  `json:"userId"`
	Name     string `json:"name,omitempty"`
	Score    int    `json:"score"`
}

// Sink is the platform's leaderboard.
type Sink interface {
	// ForceSetScore records score for userID on surface, overwriting any
	// previous value even when it is higher.
	ForceSetScore(ctx context.Context, userID int64, score int, surface session.Surface) error

	// ReadHighScores returns the leaderboard around userID on surface.
	ReadHighScores(ctx context.Context, userID int64, surface session.Surface) ([]Record, error)
}

// Entry is an accepted submission as written to a Recorder.
type Entry struct {
	ID        string
	UserID    int64
	Surface   string
	Score     int
	CreatedAt time.Time
}

// Recorder keeps a local history of accepted submissions.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type Service struct {
	signer   *session.Signer
	sink     Sink
	recorder Recorder
	now      func() time.Time
}

// NewService wires a Service. recorder may be nil.
func NewService(signer *session.Signer, sink Sink, recorder Recorder) (*Service, error) {
	if signer == nil {
		return nil, errors.New("scoring: signer must not be nil")
	}
	if sink == nil {
		return nil, errors.New("scoring: sink must not be nil")
	}
	return &Service{signer: signer, sink: sink, recorder: recorder, now: time.Now}, nil
}

// maxScore is the largest floored value that still converts to int exactly.
const maxScore = float64(math.MaxInt >> 10 << 10)

// Submit verifies the session and forwards max(0, floor(raw)) to the sink.
// It makes a single sink attempt and returns the score that was written.
func (s *Service) Submit(ctx context.Context, payload, sig string, raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, newError(ErrorInvalidScore, "not_finite", nil)
	}
	sc, err := s.open(payload, sig)
	if err != nil {
		return 0, err
	}

	clamped := math.Max(0, math.Floor(raw))
	if clamped > maxScore {
		return 0, newError(ErrorInvalidScore, "out_of_range", nil)
	}
	score := int(clamped)

	if err := s.sink.ForceSetScore(ctx, sc.UserID, score, sc.Surface); err != nil {
		log.Error().Err(err).Int64("user", sc.UserID).Str("surface", sc.Surface.Key()).Msg("set game score")
		return 0, newError(ErrorSinkUnavailable, "set_score_failed", err)
	}
	log.Info().Int64("user", sc.UserID).Str("surface", sc.Surface.Key()).Int("score", score).Msg("score recorded")

	s.record(ctx, sc, score)
	return score, nil
}

// HighScores verifies the session and reads the leaderboard for its surface.
func (s *Service) HighScores(ctx context.Context, payload, sig string) ([]Record, error) {
	sc, err := s.open(payload, sig)
	if err != nil {
		return nil, err
	}
	rows, err := s.sink.ReadHighScores(ctx, sc.UserID, sc.Surface)
	if err != nil {
		log.Error().Err(err).Int64("user", sc.UserID).Str("surface", sc.Surface.Key()).Msg("get game high scores")
		return nil, newError(ErrorSinkUnavailable, "high_scores_failed", err)
	}
	if rows == nil {
		rows = []Record{}
	}
	return rows, nil
}

// open runs signature verification, then payload decoding.
func (s *Service) open(payload, sig string) (session.Context, error) {
	if !s.signer.Verify(payload, sig) {
		log.Warn().Msg("rejected session: bad signature")
		return session.Context{}, newError(ErrorUnauthorized, "bad_signature", nil)
	}
	sc, err := session.Decode(payload)
	if err != nil {
		log.Warn().Err(err).Msg("rejected session: malformed payload")
		return session.Context{}, newError(ErrorMalformedPayload, "decode_failed", err)
	}
	return sc, nil
}

// record writes to the local ledger; failures are logged and ignored.
func (s *Service) record(ctx context.Context, sc session.Context, score int) {
	if s.recorder == nil {
		return
	}
	e := Entry{
		ID:        uuid.NewString(),
		UserID:    sc.UserID,
		Surface:   sc.Surface.Key(),
		Score:     score,
		CreatedAt: s.now().UTC(),
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		log.Warn().Err(err).Str("entry", e.ID).Msg("ledger record")
	}
}
