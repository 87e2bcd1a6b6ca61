package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/assets"
	"github.com/robalobadob/tictactoe/internal/config"
	"github.com/robalobadob/tictactoe/internal/game"
	"github.com/robalobadob/tictactoe/internal/httpserver"
	"github.com/robalobadob/tictactoe/internal/ledger"
	"github.com/robalobadob/tictactoe/internal/paramstore"
	"github.com/robalobadob/tictactoe/internal/scoring"
	"github.com/robalobadob/tictactoe/internal/session"
	"github.com/robalobadob/tictactoe/internal/store"
	"github.com/robalobadob/tictactoe/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run wires every component and blocks until ctx is cancelled or the HTTP
// server fails. Resources opened here are released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	if cfg.GameSecretParam != "" {
		ps, err := paramstore.NewFromEnvironment(ctx)
		if err != nil {
			return fmt.Errorf("parameter store: %w", err)
		}
		if err := cfg.ResolveSecret(ctx, ps); err != nil {
			return err
		}
	}
	if cfg.UsingDevSecret() {
		log.Warn().Msg("GAME_SECRET not set; using the development secret")
	}

	signer, err := session.NewSigner([]byte(cfg.GameSecret))
	if err != nil {
		return fmt.Errorf("session signer: %w", err)
	}

	// Long polling and request/response calls get separate clients: getUpdates
	// holds a connection for up to a minute, score writes must not.
	pollAPI, err := telegram.NewBotAPI(cfg.BotToken, cfg.TelegramAPI, telegram.PollClientTimeout)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	callAPI, err := telegram.NewBotAPI(cfg.BotToken, cfg.TelegramAPI, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}

	var (
		recorder scoring.Recorder
		top      httpserver.TopLister
	)
	if cfg.LedgerEnabled() {
		led, err := ledger.Open(ctx, cfg.LedgerDSN)
		if err != nil {
			log.Error().Err(err).Msg("ledger unavailable; continuing without it")
		} else {
			defer led.Close()
			recorder, top = led, led
		}
	}

	scores, err := scoring.NewService(signer, telegram.NewScoreboard(callAPI), recorder)
	if err != nil {
		return fmt.Errorf("scoring service: %w", err)
	}

	bot := telegram.NewBot(pollAPI, telegram.NewHandler(callAPI, signer, cfg.GameShortName, cfg.Domain))
	srv := httpserver.New(httpserver.Options{
		Scores:         scores,
		Matches:        store.NewMemoryStore(),
		Opponent:       game.NewOpponent(nil),
		Ledger:         top,
		Static:         assets.Game(),
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	botCtx, stopBot := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		bot.Run(botCtx)
	}()

	log.Info().Str("port", cfg.Port).Str("domain", cfg.Domain).Str("game", cfg.GameShortName).Msg("starting tictactoe")
	err = srv.Run(ctx, ":"+cfg.Port)
	stopBot()
	wg.Wait()
	return err
}
