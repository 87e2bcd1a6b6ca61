// internal/httpserver/server.go
//
// HTTP server wiring for the tic-tac-toe game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/" (redirect to the game), "/health", "/game/*" (static page).
//   - Score endpoints: POST /api/set_score, POST /api/high_scores, GET /api/ledger/top.
//   - Match endpoints: POST /api/game/new, POST /api/game/move.
//
// Notes:
//   - Score endpoints are authenticated only by the signed payload/sig pair the
//     bot put in the game URL.
//   - Error bodies are {"ok":false,"error":"<code>"}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/internal/game"
	"github.com/robalobadob/tictactoe/internal/ledger"
	"github.com/robalobadob/tictactoe/internal/scoring"
	"github.com/robalobadob/tictactoe/internal/store"
)

// Scorer is implemented by *scoring.Service.
type Scorer interface {
	Submit(ctx context.Context, payload, sig string, raw float64) (int, error)
	HighScores(ctx context.Context, payload, sig string) ([]scoring.Record, error)
}

// TopLister is implemented by every ledger backend.
type TopLister interface {
	Top(ctx context.Context, limit int) ([]ledger.Row, error)
}

// Options configures a Server. Ledger may be nil when the ledger is disabled.
type Options struct {
	Scores         Scorer
	Matches        store.Store
	Opponent       *game.Opponent
	Ledger         TopLister
	Static         fs.FS
	ClientOrigin   string
	RequestTimeout time.Duration
}

type Server struct {
	r    *chi.Mux
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "*"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Opponent == nil {
		opts.Opponent = game.NewOpponent(nil)
	}
	s := &Server{r: chi.NewRouter(), opts: opts}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.RequestTimeout))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, gamePage, http.StatusFound)
	})
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/game/*", s.handleStatic)

	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(cors(opts.ClientOrigin))
		s.mountScores(r)
		s.mountMatches(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Handler exposes the router (used by tests and by Run).
func (s *Server) Handler() http.Handler { return s.r }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	writeJSON(w, status, errorBody{OK: false, Error: code})
}
