package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// updateTimeout limits handling of a single update, lookups are the slowest part of it
const updateTimeout = 15 * time.Second

// every update fans out to all lookup sources
const maxConcurrentUpdates = 4

type Handler interface {
	Handle(ctx context.Context, b Bot, u tgbotapi.Update)
	Passthrough(tgbotapi.Update) bool
	Match(u tgbotapi.Update) bool
}

// TelegramBot handles Telegram API intragration and updates handling
type TelegramBot struct {
	UserName string
	api      *tgbotapi.BotAPI
	handlers []Handler
}

func (b *TelegramBot) processUpdate(ctx context.Context, u tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	for _, handler := range b.handlers {
		if handler.Match(u) {
			handler.Handle(ctx, b, u)
			if !handler.Passthrough(u) {
				break
			}
		}
	}
}

// Start handles updates until ctx is cancelled
func (b *TelegramBot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	b.handleUpdates(ctx, b.api.GetUpdatesChan(u))
	b.api.StopReceivingUpdates()
}

// handleUpdates processes at most maxConcurrentUpdates updates at a time,
// receiving waits while all of them are busy
func (b *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var g errgroup.Group
	g.SetLimit(maxConcurrentUpdates)
	defer func() { _ = g.Wait() }()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			g.Go(func() error {
				b.processUpdate(ctx, u)
				return nil
			})
		}
	}
}

func (b *TelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	message, err := b.api.Send(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to send")
	}
	return message, err
}

func NewTelegramBot(token string, handlers []Handler) (*TelegramBot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize bot")
	}
	log.Info().Str("username", botAPI.Self.UserName).Msg("telegram bot initialized")
	return &TelegramBot{
		UserName: botAPI.Self.UserName,
		api:      botAPI,
		handlers: handlers,
	}, nil
}
