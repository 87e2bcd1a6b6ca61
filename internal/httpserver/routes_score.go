package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/internal/ledger"
	"github.com/robalobadob/tictactoe/internal/scoring"
)

// maxBody bounds every API request body.
const maxBody = 16 << 10

func (s *Server) mountScores(r chi.Router) {
	r.Post("/set_score", s.handleSetScore)
	r.Post("/high_scores", s.handleHighScores)
	r.Get("/ledger/top", s.handleLedgerTop)
}

// setScoreReq keeps Score as a pointer so a missing score is distinguishable
// from 0. A score sent as a JSON string fails decoding.
type setScoreReq struct {
	Payload string   `json:"payload"`
	Sig     string   `json:"sig"`
	Score   *float64 `json:"score"`
}

type setScoreRes struct {
	OK    bool `json:"ok"`
	Score int  `json:"score"`
}

func (s *Server) handleSetScore(w http.ResponseWriter, r *http.Request) {
	var req setScoreReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	if req.Payload == "" || req.Sig == "" || req.Score == nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	score, err := s.opts.Scores.Submit(r.Context(), req.Payload, req.Sig, *req.Score)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setScoreRes{OK: true, Score: score})
}

type highScoresReq struct {
	Payload string `json:"payload"`
	Sig     string `json:"sig"`
}

type highScoresRes struct {
	OK     bool             `json:"ok"`
	Scores []scoring.Record `json:"scores"`
}

func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	var req highScoresReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	if req.Payload == "" || req.Sig == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	rows, err := s.opts.Scores.HighScores(r.Context(), req.Payload, req.Sig)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, highScoresRes{OK: true, Scores: rows})
}

type ledgerTopRes struct {
	OK  bool         `json:"ok"`
	Top []ledger.Row `json:"top"`
}

func (s *Server) handleLedgerTop(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "ledger_disabled")
		return
	}
	limit := ledger.DefaultTopLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "bad_request")
			return
		}
		limit = n
	}

	rows, err := s.opts.Ledger.Top(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("ledger top")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, ledgerTopRes{OK: true, Top: rows})
}

// writeScoringError maps the scoring error taxonomy onto HTTP.
func writeScoringError(w http.ResponseWriter, err error) {
	switch scoring.CodeOf(err) {
	case scoring.ErrorInvalidScore, scoring.ErrorMalformedPayload:
		writeError(w, http.StatusBadRequest, "bad_request")
	case scoring.ErrorUnauthorized:
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
