package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// pollTimeout is the getUpdates long-poll window in seconds. A client used
// for polling needs a timeout above it.
const pollTimeout = 60

// PollClientTimeout bounds each getUpdates round trip.
const PollClientTimeout = (pollTimeout + 15) * time.Second

// Bot long-polls Telegram and hands every update to a Handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

// NewBotAPI connects to Telegram with token. An empty endpoint selects the
// public Bot API; a self-hosted server takes the same "%s/%s" format. Every
// request made through the returned client, getMe included, is bounded by
// timeout.
func NewBotAPI(token, endpoint string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	log.Info().Str("bot", api.Self.UserName).Dur("timeout", timeout).Msg("authorized on telegram")
	return api, nil
}

func NewBot(api *tgbotapi.BotAPI, handler *Handler) *Bot {
	return &Bot{api: api, handler: handler}
}

// Run processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	log.Info().Str("game", b.handler.GameName).Msg("bot started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info().Msg("bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handler.HandleUpdate(update)
		}
	}
}
