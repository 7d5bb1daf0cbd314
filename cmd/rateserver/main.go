package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"kopilka/pkg/rateapi"

	"github.com/joho/godotenv"
	"github.com/vmkteam/embedlog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	isDevel := os.Getenv("DEVEL") == "true"
	sl := embedlog.NewLogger(isDevel, false)
	ctx := context.Background()

	apiKey := os.Getenv("RATES_API_KEY")
	if apiKey == "" {
		sl.Error(ctx, "RATES_API_KEY is required")
		os.Exit(1)
	}

	port := 5000
	if p := os.Getenv("SERVER_PORT"); p != "" {
		var err error
		if port, err = strconv.Atoi(p); err != nil {
			sl.Error(ctx, "SERVER_PORT must be a number", "value", p)
			os.Exit(1)
		}
	}

	srv := rateapi.New(rateapi.Config{
		Host:    os.Getenv("SERVER_HOST"),
		Port:    port,
		APIKey:  apiKey,
		IsDevel: isDevel,
	}, sl)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		sl.Print(ctx, "shutting down", "timeout", shutdownTimeout.String())
		if err := srv.Shutdown(shutdownTimeout); err != nil {
			sl.Error(ctx, "failed to shutdown", "err", err)
		}
	}()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sl.Error(ctx, "rate service failed", "err", err)
		os.Exit(1)
	}
}
