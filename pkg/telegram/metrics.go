package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telegram bot metrics
var (
	// Счетчик обработанных команд по типам
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"}, // start, reg, add_operation, operations, setbudget, cancel
	)

	// Счетчик обработанных шагов диалога по состояниям
	stepsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_steps_processed_total",
			Help: "Total number of processed conversation steps by state",
		},
		[]string{"state"},
	)

	// Счетчик зарегистрированных пользователей
	usersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_users_registered_total",
			Help: "Total number of registered users",
		},
	)

	// Счетчик созданных операций
	operationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_operations_created_total",
			Help: "Total number of operations created",
		},
	)

	// Счетчик установленных бюджетов
	budgetsSet = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_budgets_set_total",
			Help: "Total number of budgets set or replaced",
		},
	)

	// Счетчик откатов на рубли из-за недоступного курса
	rateFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_fallbacks_total",
			Help: "Total number of summaries shown in home currency because the rate was unavailable",
		},
	)

	// Счетчик ошибок по типам
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // database, user_lookup, summary
	)
)
