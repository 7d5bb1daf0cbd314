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

	"kopilka/pkg/app"
	"kopilka/pkg/db"

	"github.com/go-pg/pg/v10"
	"github.com/joho/godotenv"
	"github.com/vmkteam/embedlog"
)

const appName = "kopilka"

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is optional, real deployments pass the environment directly
	_ = godotenv.Load()

	isDevel := os.Getenv("DEVEL") == "true"
	sl := embedlog.NewLogger(isDevel, false)
	ctx := context.Background()

	cfg, err := configFromEnv(isDevel)
	if err != nil {
		sl.Error(ctx, "failed to read config", "err", err)
		os.Exit(1)
	}

	dbc := db.New(cfg.Database)
	if err := dbc.Ping(ctx); err != nil {
		sl.Error(ctx, "failed to connect to db", "err", err)
		os.Exit(1)
	}
	defer dbc.Close()

	a, err := app.New(ctx, appName, sl, cfg, dbc)
	if err != nil {
		sl.Error(ctx, "failed to create app", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		sl.Print(ctx, "shutting down", "timeout", shutdownTimeout.String())
		if err := a.Shutdown(shutdownTimeout); err != nil {
			sl.Error(ctx, "failed to shutdown", "err", err)
		}
	}()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sl.Error(ctx, "app run failed", "err", err)
		os.Exit(1)
	}
}

// configFromEnv assembles app config from the environment.
func configFromEnv(isDevel bool) (app.Config, error) {
	var cfg app.Config

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	opts, err := pg.ParseURL(dbURL)
	if err != nil {
		return cfg, err
	}
	cfg.Database = opts

	cfg.Server.Host = os.Getenv("SERVER_HOST")
	cfg.Server.Port = 8080
	if p := os.Getenv("SERVER_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return cfg, errors.New("SERVER_PORT must be a number")
		}
		cfg.Server.Port = port
	}
	cfg.Server.IsDevel = isDevel

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	cfg.Telegram.Debug = os.Getenv("TELEGRAM_DEBUG") == "true"

	cfg.Rates.URL = os.Getenv("RATES_URL")
	cfg.Rates.APIKey = os.Getenv("RATES_API_KEY")

	return cfg, nil
}
