package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/internal/game"
	"github.com/robalobadob/tictactoe/internal/store"
)

const gamePage = "/game/index.html"

func (s *Server) mountMatches(r chi.Router) {
	r.Post("/game/new", s.handleNewMatch)
	r.Post("/game/move", s.handleMove)
}

type matchRes struct {
	GameID string   `json:"gameId"`
	Board  []string `json:"board"`
	State  string   `json:"state"` // "playing" | "won" | "lost" | "draw"
	Reply  int      `json:"reply"` // opponent's cell, -1 when it did not move
}

func newMatchRes(m *game.Match, reply int) matchRes {
	return matchRes{GameID: m.ID, Board: m.Board.Cells(), State: m.State(), Reply: reply}
}

func (s *Server) handleNewMatch(w http.ResponseWriter, r *http.Request) {
	m := game.NewMatch()
	if err := s.opts.Matches.Save(r.Context(), m); err != nil {
		log.Error().Err(err).Msg("save match")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, newMatchRes(m, -1))
}

type moveReq struct {
	GameID string `json:"gameId"`
	Cell   *int   `json:"cell"`
}

// handleMove plays the human's cell and the opponent's reply. Finished
// matches are removed from the store.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil || req.GameID == "" || req.Cell == nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	m, err := s.opts.Matches.Get(r.Context(), req.GameID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", req.GameID).Msg("load match")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	reply, err := m.Play(*req.Cell, s.opts.Opponent)
	if errors.Is(err, game.ErrIllegalMove) {
		writeError(w, http.StatusBadRequest, "illegal_move")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", m.ID).Msg("play")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	if m.Over {
		err = s.opts.Matches.Delete(r.Context(), m.ID)
		log.Info().Str("gameId", m.ID).Str("state", m.State()).Int("moves", m.Moves).
			Int("live", s.opts.Matches.Len()).Msg("match finished")
	} else {
		err = s.opts.Matches.Save(r.Context(), m)
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", m.ID).Msg("store match")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, newMatchRes(m, reply))
}

// handleStatic serves the embedded game page. index.html is written
// directly because http.FileServer would redirect it to the directory.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.opts.Static == nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	name := path.Clean("/" + chi.URLParam(r, "*"))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		name = "index.html"
	}

	body, err := fs.ReadFile(s.opts.Static, name)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(body))
}
