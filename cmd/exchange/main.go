package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kopilka/pkg/exchange"

	"github.com/joho/godotenv"
	"github.com/vmkteam/embedlog"
)

func main() {
	_ = godotenv.Load()

	isDevel := os.Getenv("DEVEL") == "true"
	sl := embedlog.NewLogger(isDevel, false)
	ctx := context.Background()

	b, err := exchange.New(exchange.Config{
		Token: os.Getenv("EXCHANGE_TELEGRAM_TOKEN"),
		Debug: os.Getenv("TELEGRAM_DEBUG") == "true",
	}, sl)
	if err != nil {
		sl.Error(ctx, "failed to create exchange bot", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := b.Start(ctx); err != nil {
		sl.Error(ctx, "exchange bot failed", "err", err)
		os.Exit(1)
	}
}
