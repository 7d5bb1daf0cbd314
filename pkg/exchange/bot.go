package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/vmkteam/embedlog"
)

// Bot is a currency converter bot over an in-memory rate table. It
// shares no state with the budget bot.
type Bot struct {
	api      *bot.Bot
	logger   embedlog.Logger
	table    *RateTable
	sessions *SessionStore
}

type Config struct {
	Token string
	Debug bool
}

// New creates a new converter bot instance
func New(cfg Config, logger embedlog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	b := &Bot{
		logger:   logger,
		table:    NewRateTable(),
		sessions: NewSessionStore(),
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		// messages of one chat must be handled in arrival order, so
		// handlers run on the polling goroutine
		bot.WithNotAsyncHandlers(),
	}

	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.api = api
	b.registerHandlers()

	return b, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Print(ctx, "exchange bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)

	return nil
}

func (b *Bot) registerHandlers() {
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.handleStart)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/save_currency", bot.MatchTypeExact, b.handleSaveCurrency)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/convert", bot.MatchTypeExact, b.handleConvert)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/restart", bot.MatchTypeExact, b.handleRestart)

	// Text message handler for state-based conversation steps
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, b.handleMessage)
}

func (b *Bot) defaultHandler(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	b.logger.Print(ctx, "unknown update", "text", update.Message.Text)
	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Неизвестная команда. Используйте /start для списка доступных команд.",
	})
}

// handleStart handles /start command - resets state and shows help
func (b *Bot) handleStart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("start").Inc()
	if update.Message == nil {
		return
	}

	b.sessions.Clear(update.Message.Chat.ID)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "Бот арбитражник.\n\n" +
			"Вот что я умею:\n" +
			"/save_currency - создать и сохранить валюту\n" +
			"/convert - конвертировать\n" +
			"/restart - сброс текущего процесса",
	})
}

// handleSaveCurrency starts the save-currency flow
func (b *Bot) handleSaveCurrency(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("save_currency").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "Название валюты (которую хотим создать):",
	})
	b.sessions.Set(chatID, Session{State: StateAwaitingCurrencyName})
}

// handleConvert starts the conversion flow
func (b *Bot) handleConvert(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("convert").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "Название валюты, которую хотите обменять:",
	})
	b.sessions.Set(chatID, Session{State: StateAwaitingConvertName})
}

// handleRestart resets the current conversation from any state
func (b *Bot) handleRestart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("restart").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	b.sessions.Clear(chatID)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "Сброшено. Начните с /save_currency или /convert.",
	})
}

// handleMessage routes free-text input to the step of the active flow
func (b *Bot) handleMessage(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	session := b.sessions.Get(chatID)

	switch session.State {
	case StateAwaitingCurrencyName:
		b.stepCurrencyName(ctx, botAPI, chatID, text, session)
	case StateAwaitingCurrencyRate:
		b.stepCurrencyRate(ctx, botAPI, chatID, text, session)
	case StateAwaitingConvertName:
		b.stepConvertName(ctx, botAPI, chatID, text, session)
	case StateAwaitingAmount:
		b.stepAmount(ctx, botAPI, chatID, text, session)
	default:
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Неизвестная команда. Используйте /start для списка доступных команд.",
		})
	}
}

// stepCurrencyName saves the new currency code and asks for its rate
func (b *Bot) stepCurrencyName(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	session.Currency = strings.ToUpper(text)
	session.State = StateAwaitingCurrencyRate
	b.sessions.Set(chatID, session)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("Курс %s к рублю:", session.Currency),
	})
}

// stepCurrencyRate validates and stores the rate for the pending currency
func (b *Bot) stepCurrencyRate(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	rate, err := parseNumber(text)
	if err != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Введите правильное число.",
		})
		return
	}

	b.table.Save(session.Currency, rate)
	currenciesSaved.Inc()
	b.sessions.Clear(chatID)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("Курс %s к рублю сохранен: %s\n"+
			"Теперь вы можете использовать команду /convert для конвертации.",
			session.Currency, rate.String()),
	})
}

// stepConvertName checks the requested currency is known. An unknown
// code aborts the flow instead of re-prompting.
func (b *Bot) stepConvertName(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	currency := strings.ToUpper(text)
	if _, ok := b.table.Get(currency); !ok {
		b.sessions.Clear(chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Такой валюты у нас нет. Сохраните ее через /save_currency.",
		})
		return
	}

	session.Currency = currency
	session.State = StateAwaitingAmount
	b.sessions.Set(chatID, session)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("Введите сумму в валюте %s:", currency),
	})
}

// stepAmount converts the entered amount to rubles
func (b *Bot) stepAmount(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	amount, err := parseNumber(text)
	if err != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Введите правильное число.",
		})
		return
	}

	rate, ok := b.table.Get(session.Currency)
	if !ok {
		b.sessions.Clear(chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Такой валюты у нас нет. Сохраните ее через /save_currency.",
		})
		return
	}

	rubles := amount.Mul(rate)
	conversionsDone.Inc()
	b.sessions.Clear(chatID)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("%s %s = %s RUB", amount.String(), session.Currency, rubles.StringFixed(2)),
	})
}

// parseNumber parses a positive decimal number, accepting either comma
// or dot as the decimal separator.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")

	n, err := decimal.NewFromString(s)
	if err != nil || !n.IsPositive() {
		return decimal.Decimal{}, errors.New("value must be a positive number")
	}

	return n, nil
}
