package telegram

import (
	"errors"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/internal/session"
)

// API is the subset of *tgbotapi.BotAPI used here.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetGameHighScores(config tgbotapi.GetGameHighScoresConfig) ([]tgbotapi.GameHighScore, error)
}

// Issuer turns a session context into the signed pair given to the browser.
type Issuer interface {
	Issue(c session.Context) (session.Signed, error)
}

// GamePath is where the game page is served.
const GamePath = "/game/index.html"

type Handler struct {
	Bot      API
	Sessions Issuer
	GameName string
	GameURL  string
}

// NewHandler builds a Handler for the game gameName served under domain.
func NewHandler(bot API, sessions Issuer, gameName, domain string) *Handler {
	return &Handler{
		Bot:      bot,
		Sessions: sessions,
		GameName: gameName,
		GameURL:  strings.TrimRight(domain, "/") + GamePath,
	}
}

// HandleUpdate routes one update to its handler.
func (h *Handler) HandleUpdate(u tgbotapi.Update) {
	switch {
	case u.Message != nil && u.Message.IsCommand():
		switch u.Message.Command() {
		case "start", "game", "play":
			h.HandleStart(u.Message)
		}
	case u.InlineQuery != nil:
		h.HandleInlineQuery(u.InlineQuery)
	case u.CallbackQuery != nil:
		h.HandleCallbackQuery(u.CallbackQuery)
	}
}

// HandleStart replies with the game message.
func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	game := tgbotapi.GameConfig{
		BaseChat:      tgbotapi.BaseChat{ChatID: msg.Chat.ID},
		GameShortName: h.GameName,
	}
	if _, err := h.Bot.Send(game); err != nil {
		log.Error().Err(err).Int64("chat", msg.Chat.ID).Msg("send game")
	}
}

// HandleInlineQuery offers the game as the only inline result.
func (h *Handler) HandleInlineQuery(q *tgbotapi.InlineQuery) {
	answer := tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		Results: []interface{}{
			tgbotapi.InlineQueryResultGame{Type: "game", ID: "ttt", GameShortName: h.GameName},
		},
		CacheTime: 0,
	}
	if _, err := h.Bot.Request(answer); err != nil {
		log.Error().Err(err).Str("query", q.ID).Msg("answer inline query")
	}
}

// HandleCallbackQuery answers a "Play" button press with the signed game URL.
func (h *Handler) HandleCallbackQuery(cq *tgbotapi.CallbackQuery) {
	if cq.GameShortName != h.GameName {
		h.answer(tgbotapi.NewCallback(cq.ID, "Unknown game"))
		return
	}

	sc, err := contextFromCallback(cq)
	if err != nil {
		log.Warn().Err(err).Str("callback", cq.ID).Msg("callback without surface")
		h.answer(tgbotapi.NewCallback(cq.ID, "Unknown game"))
		return
	}
	signed, err := h.Sessions.Issue(sc)
	if err != nil {
		log.Error().Err(err).Int64("user", sc.UserID).Msg("issue session")
		h.answer(tgbotapi.NewCallback(cq.ID, "Game unavailable"))
		return
	}

	cb := tgbotapi.NewCallback(cq.ID, "")
	cb.URL = h.launchURL(signed)
	h.answer(cb)
	log.Info().Int64("user", sc.UserID).Str("surface", sc.Surface.Key()).Msg("game launched")
}

// launchURL is GameURL with the payload and signature as query parameters.
func (h *Handler) launchURL(s session.Signed) string {
	q := url.Values{}
	q.Set("payload", s.Payload)
	q.Set("sig", s.Signature)
	return h.GameURL + "?" + q.Encode()
}

func (h *Handler) answer(cb tgbotapi.CallbackConfig) {
	if _, err := h.Bot.Request(cb); err != nil {
		log.Error().Err(err).Str("callback", cb.CallbackQueryID).Msg("answer callback")
	}
}

// contextFromCallback reads the player and the surface the game message lives on.
func contextFromCallback(cq *tgbotapi.CallbackQuery) (session.Context, error) {
	if cq.From == nil {
		return session.Context{}, errors.New("callback has no sender")
	}
	sc := session.Context{UserID: cq.From.ID}
	switch {
	case cq.InlineMessageID != "":
		sc.InlineMessageID = cq.InlineMessageID
	case cq.Message != nil && cq.Message.Chat != nil:
		sc.ChatID = cq.Message.Chat.ID
		sc.MessageID = cq.Message.MessageID
	default:
		return session.Context{}, errors.New("callback has neither message nor inline message")
	}
	return sc, sc.Validate()
}
