package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kopilka/pkg/db"
	"kopilka/pkg/ledger"
	"kopilka/pkg/rates"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
)

// handleStart handles /start command - shows available commands
func (b *Bot) handleStart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("start").Inc()
	if update.Message == nil {
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "💰 <b>Финансовый менеджер</b> 💰\n\n" +
			"Доступные команды:\n" +
			"/reg - регистрация\n" +
			"/add_operation - добавить операцию\n" +
			"/operations - просмотреть операции\n" +
			"/setbudget - установить бюджет на месяц\n" +
			"/cancel - отменить текущий диалог\n\n" +
			"Используйте кнопки для удобного ввода данных.",
		ParseMode: models.ParseModeHTML,
	})
}

// handleReg starts the registration flow
func (b *Bot) handleReg(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("reg").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	user, err := b.ledger.UserByChat(ctx, chatID)
	if err != nil {
		errorsTotal.WithLabelValues("user_lookup").Inc()
		b.logger.Error(ctx, "failed to get user", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Произошла ошибка. Попробуйте позже.",
		})
		return
	}
	if user != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "ℹ️ Вы уже зарегистрированы.",
		})
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "📝 Введите ваш логин (от 3 до 20 символов, только буквы и цифры):",
		ReplyMarkup: removeKeyboard(),
	})
	b.sessions.Set(chatID, Session{State: StateAwaitingLogin})
}

// handleAddOperation starts the add-operation flow
func (b *Bot) handleAddOperation(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("add_operation").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if user := b.requireUser(ctx, botAPI, chatID); user == nil {
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Выберите тип операции:",
		ReplyMarkup: operationTypeKeyboard(),
	})
	b.sessions.Set(chatID, Session{State: StateAwaitingOperationType})
}

// handleOperations starts the month summary flow
func (b *Bot) handleOperations(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("operations").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if user := b.requireUser(ctx, botAPI, chatID); user == nil {
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Выберите валюту для отображения операций:",
		ReplyMarkup: currencyKeyboard(),
	})
	b.sessions.Set(chatID, Session{State: StateAwaitingCurrency})
}

// handleSetBudget starts the set-budget flow
func (b *Bot) handleSetBudget(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("setbudget").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if user := b.requireUser(ctx, botAPI, chatID); user == nil {
		return
	}

	existing, err := b.ledger.BudgetForMonth(ctx, chatID, time.Now())
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to get budget", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Произошла ошибка. Попробуйте позже.",
		})
		return
	}

	text := "Введите сумму бюджета на текущий месяц (в рублях):"
	if existing != nil {
		text = fmt.Sprintf(
			"ℹ️ У вас уже установлен бюджет на текущий месяц: %s руб.\n"+
				"Хотите изменить его? Введите новую сумму бюджета или 'отмена' для отмены:",
			existing.StringFixed(2),
		)
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: removeKeyboard(),
	})
	b.sessions.Set(chatID, Session{State: StateAwaitingBudget})
}

// handleCancel resets the current conversation from any state
func (b *Bot) handleCancel(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("cancel").Inc()
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	b.sessions.Clear(chatID)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Сброшено. Начните с /add_operation, /operations или /setbudget.",
		ReplyMarkup: removeKeyboard(),
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
	stepsProcessed.WithLabelValues(string(session.State)).Inc()

	switch session.State {
	case StateAwaitingLogin:
		b.stepLogin(ctx, botAPI, chatID, text)
	case StateAwaitingOperationType:
		b.stepOperationType(ctx, botAPI, chatID, text, session)
	case StateAwaitingOperationSum:
		b.stepOperationSum(ctx, botAPI, chatID, text, session)
	case StateAwaitingOperationDate:
		b.stepOperationDate(ctx, botAPI, chatID, text, session)
	case StateAwaitingCurrency:
		b.stepCurrency(ctx, botAPI, chatID, text)
	case StateAwaitingBudget:
		b.stepBudget(ctx, botAPI, chatID, text)
	default:
		b.logger.Print(ctx, "message outside of a flow", "text", text, "from", update.Message.From.Username)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Неизвестная команда. Используйте /start для списка доступных команд.",
		})
	}
}

// requireUser returns the registered user for a chat, or nil after
// replying with a registration hint.
func (b *Bot) requireUser(ctx context.Context, botAPI *bot.Bot, chatID int64) *db.User {
	user, err := b.ledger.UserByChat(ctx, chatID)
	if err != nil {
		errorsTotal.WithLabelValues("user_lookup").Inc()
		b.logger.Error(ctx, "failed to get user", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Произошла ошибка. Попробуйте позже.",
		})
		return nil
	}
	if user == nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Вы не зарегистрированы. Введите команду /reg для регистрации.",
		})
		return nil
	}

	return user
}

// stepLogin validates and saves the requested login
func (b *Bot) stepLogin(ctx context.Context, botAPI *bot.Bot, chatID int64, login string) {
	if err := validateLogin(login); err != nil {
		text := "❌ Логин должен содержать только буквы и цифры. Попробуйте еще раз."
		if errors.Is(err, errLoginLength) {
			text = "❌ Логин должен быть от 3 до 20 символов. Попробуйте еще раз."
		}
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
		return
	}

	_, err := b.ledger.Register(ctx, chatID, login)
	if errors.Is(err, ledger.ErrLoginTaken) {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Этот логин уже занят. Выберите другой.",
		})
		return
	}
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to register user", "err", err, "chat_id", chatID)
		b.sessions.Clear(chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Произошла ошибка при регистрации. Попробуйте снова.",
		})
		return
	}

	usersRegistered.Inc()
	b.sessions.Clear(chatID)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("✅ Регистрация успешна! Добро пожаловать, <b>%s</b>!", login),
		ParseMode: models.ParseModeHTML,
	})
}

// stepOperationType saves the chosen operation type and asks for the sum
func (b *Bot) stepOperationType(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	typeOperation := strings.ToUpper(text)
	if typeOperation != db.OperationExpense && typeOperation != db.OperationIncome {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Пожалуйста, выберите тип операции с помощью кнопок.",
		})
		return
	}

	session.OperationType = typeOperation
	session.State = StateAwaitingOperationSum
	b.sessions.Set(chatID, session)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Введите сумму операции (только цифры):",
		ReplyMarkup: removeKeyboard(),
	})
}

// stepOperationSum saves the operation sum and asks for the date
func (b *Bot) stepOperationSum(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	sum, err := parseAmount(text)
	if err != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Пожалуйста, введите корректную сумму (положительное число).",
		})
		return
	}

	session.OperationSum = sum
	session.State = StateAwaitingOperationDate
	b.sessions.Set(chatID, session)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "Введите дату операции в формате ГГГГ-ММ-ДД:",
	})
}

// stepOperationDate persists the collected operation. The session is
// cleared whatever the insert outcome: a failed insert is reported but
// the flow does not restart.
func (b *Bot) stepOperationDate(ctx context.Context, botAPI *bot.Bot, chatID int64, text string, session Session) {
	date, err := parseDate(text)
	if err != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Неверный формат даты. Используйте ГГГГ-ММ-ДД.",
		})
		return
	}

	defer b.sessions.Clear(chatID)

	if err := b.ledger.AddOperation(ctx, chatID, date, session.OperationSum, session.OperationType); err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to add operation", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Произошла ошибка при сохранении операции. Попробуйте снова.",
		})
		return
	}

	operationsCreated.Inc()

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf(
			"✅ Операция успешно добавлена:\n\n"+
				"<b>Тип:</b> %s\n"+
				"<b>Сумма:</b> %s руб.\n"+
				"<b>Дата:</b> %s",
			session.OperationType, session.OperationSum.StringFixed(2), date.Format(dateLayout),
		),
		ParseMode: models.ParseModeHTML,
	})
}

// stepBudget persists the month budget or cancels the flow
func (b *Bot) stepBudget(ctx context.Context, botAPI *bot.Bot, chatID int64, text string) {
	if strings.EqualFold(text, "отмена") {
		b.sessions.Clear(chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Установка бюджета отменена.",
		})
		return
	}

	amount, err := parseAmount(text)
	if err != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Пожалуйста, введите корректную сумму (положительное число).",
		})
		return
	}

	month := ledger.MonthStart(time.Now())

	defer b.sessions.Clear(chatID)

	if err := b.ledger.SetBudget(ctx, chatID, month, amount); err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to set budget", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Произошла ошибка при сохранении бюджета. Попробуйте снова.",
		})
		return
	}

	budgetsSet.Inc()

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Бюджет на %s установлен: %s руб.", monthTitle(month), amount.StringFixed(2)),
	})
}

// stepCurrency builds and sends the month summary in the chosen
// currency. The session is cleared whatever the outcome.
func (b *Bot) stepCurrency(ctx context.Context, botAPI *bot.Bot, chatID int64, text string) {
	currency := strings.ToUpper(text)
	if currency != "RUB" && currency != "USD" && currency != "EUR" {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Пожалуйста, выберите валюту с помощью кнопок.",
		})
		return
	}

	defer b.sessions.Clear(chatID)

	rate := decimal.NewFromInt(1)
	if currency != rates.HomeCurrency {
		r, ok := b.rates.Rate(ctx, currency)
		if !ok {
			rateFallbacks.Inc()
			_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:      chatID,
				Text:        fmt.Sprintf("⚠️ Курс %s недоступен. Показываю в рублях.", currency),
				ReplyMarkup: removeKeyboard(),
			})
			currency = rates.HomeCurrency
		} else {
			rate = r
		}
	}

	summary, err := b.ledger.MonthSummary(ctx, chatID, time.Now())
	if err != nil {
		errorsTotal.WithLabelValues("summary").Inc()
		b.logger.Error(ctx, "failed to build summary", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "⚠️ Произошла ошибка. Попробуйте позже.",
			ReplyMarkup: removeKeyboard(),
		})
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        summaryText(summary.Convert(currency, rate)),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: removeKeyboard(),
	})
}
