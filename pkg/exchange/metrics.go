package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exchange bot metrics
var (
	// Счетчик обработанных команд по типам
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"}, // start, save_currency, convert, restart
	)

	// Счетчик сохраненных валют
	currenciesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_currencies_saved_total",
			Help: "Total number of currency rates saved or replaced",
		},
	)

	// Счетчик выполненных конвертаций
	conversionsDone = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_conversions_total",
			Help: "Total number of completed conversions",
		},
	)
)
