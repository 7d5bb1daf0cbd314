package rateapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/vmkteam/appkit"
	"github.com/vmkteam/embedlog"
)

func init() {
	// rate is a JSON number on the wire, not a quoted string
	decimal.MarshalJSONWithoutQuotes = true
}

type Config struct {
	Host    string
	Port    int
	APIKey  string
	IsDevel bool
}

// Server is the mock currency rate service. Rates are a fixed in-process
// table; every /rate request must present the shared API key.
type Server struct {
	embedlog.Logger
	cfg   Config
	echo  *echo.Echo
	rates map[string]decimal.Decimal
}

// defaultRates returns the mock code->rate table.
func defaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("75.50"),
		"EUR": decimal.RequireFromString("85.20"),
	}
}

func New(cfg Config, logger embedlog.Logger) *Server {
	s := &Server{
		Logger: logger,
		cfg:    cfg,
		echo:   appkit.NewEcho(),
		rates:  defaultRates(),
	}

	s.echo.Use(appkit.HTTPMetrics(appkit.DefaultServerName))
	s.echo.HTTPErrorHandler = s.httpErrorHandler

	s.echo.GET("/rate", s.handleRate, s.requireAPIKey)
	s.echo.GET("/health", s.handleHealth)
	s.echo.Any("/metrics", echo.WrapHandler(promhttp.Handler()))

	// show all routes in devel mode
	if cfg.IsDevel {
		s.echo.GET("/", appkit.RenderRoutes("rateserver", s.echo))
	}

	return s
}

// Run starts the HTTP listener.
func (s *Server) Run(ctx context.Context) error {
	listenAddress := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.Print(ctx, "starting rate service", "url", "http://"+listenAddress)

	return s.echo.Start(listenAddress)
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

// requireAPIKey checks the shared secret in the X-API-KEY header or the
// api_key query parameter.
func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-API-KEY")
		if key == "" {
			key = c.QueryParam("api_key")
		}

		if key != s.cfg.APIKey {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid API key"})
		}

		return next(c)
	}
}

func (s *Server) handleRate(c echo.Context) error {
	currency := strings.ToUpper(c.QueryParam("currency"))
	if currency == "" {
		currency = "USD"
	}

	rate, ok := s.rates[currency]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid currency"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"currency":  currency,
		"rate":      rate,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// httpErrorHandler keeps echo's client errors and maps everything else
// to a fixed 500 body.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		_ = c.JSON(he.Code, echo.Map{"error": fmt.Sprintf("%v", he.Message)})
		return
	}

	s.Error(c.Request().Context(), "unhandled server error", "err", err)
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"message": "UNEXPECTED ERROR"})
}
