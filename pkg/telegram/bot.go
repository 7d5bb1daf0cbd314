package telegram

import (
	"context"
	"errors"
	"fmt"

	"kopilka/pkg/ledger"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/vmkteam/embedlog"
)

// RateSource returns the rate of a currency to the home currency and
// whether it is available.
type RateSource interface {
	Rate(ctx context.Context, currency string) (decimal.Decimal, bool)
}

type Bot struct {
	api      *bot.Bot
	logger   embedlog.Logger
	ledger   *ledger.Manager
	rates    RateSource
	sessions *SessionStore
}

type Config struct {
	Token string
	Debug bool
}

// New creates a new Telegram bot instance. Extra bot options are
// appended after the defaults; tests use them to point the API at a
// local server.
func New(ctx context.Context, cfg Config, lm *ledger.Manager, rates RateSource, logger embedlog.Logger, botOpts ...bot.Option) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(defaultHandler(logger)),
		// messages of one chat must be handled in arrival order, so
		// handlers run on the polling goroutine
		bot.WithNotAsyncHandlers(),
	}

	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}
	opts = append(opts, botOpts...)

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		api:      api,
		logger:   logger,
		ledger:   lm,
		rates:    rates,
		sessions: NewSessionStore(),
	}

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Print(ctx, "telegram bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)

	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop(ctx context.Context) {
	b.logger.Print(ctx, "stopping telegram bot")
}

// registerHandlers registers all command handlers
func (b *Bot) registerHandlers() {
	// Command handlers
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.handleStart)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/reg", bot.MatchTypeExact, b.handleReg)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/add_operation", bot.MatchTypeExact, b.handleAddOperation)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/operations", bot.MatchTypeExact, b.handleOperations)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/setbudget", bot.MatchTypeExact, b.handleSetBudget)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, b.handleCancel)

	// Text message handler for state-based conversation steps
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, b.handleMessage)
}

// defaultHandler handles unknown updates
func defaultHandler(logger embedlog.Logger) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message != nil {
			logger.Print(ctx, "unknown command", "text", update.Message.Text, "from", update.Message.From.Username)
			_, err := b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "Неизвестная команда. Используйте /start для списка доступных команд.",
			})
			if err != nil {
				logger.Error(ctx, "failed to send message", "err", err)
			}
		}
	}
}
