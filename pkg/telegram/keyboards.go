package telegram

import (
	"github.com/go-telegram/bot/models"

	"kopilka/pkg/db"
)

// operationTypeKeyboard returns the expense/income selection keyboard
func operationTypeKeyboard() models.ReplyMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: db.OperationExpense},
				{Text: db.OperationIncome},
			},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// currencyKeyboard returns the display currency selection keyboard
func currencyKeyboard() models.ReplyMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: "RUB"},
				{Text: "USD"},
				{Text: "EUR"},
			},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// removeKeyboard returns markup to remove a custom keyboard
func removeKeyboard() models.ReplyMarkup {
	return &models.ReplyKeyboardRemove{
		RemoveKeyboard: true,
	}
}
