package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmkteam/embedlog"
)

const (
	// HomeCurrency is the currency ledger amounts are stored in.
	HomeCurrency = "RUB"

	defaultTimeout   = 3 * time.Second
	defaultCacheSize = 3

	apiKeyHeader = "X-API-KEY"
)

type Config struct {
	BaseURL string
	APIKey  string
}

// Client fetches currency rates from the rate service, memoizing the
// last few fetched codes. A fetched rate is reused for the process
// lifetime; there is no retry policy, a failed fetch is just reported
// as unavailable.
type Client struct {
	cfg    Config
	logger embedlog.Logger
	client *http.Client
	cache  *Cache[decimal.Decimal]
}

func NewClient(cfg Config, logger embedlog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: defaultTimeout},
		cache:  NewCache[decimal.Decimal](defaultCacheSize),
	}
}

type rateResponse struct {
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp string          `json:"timestamp"`
}

// Rate returns the rate of currency to the home currency and whether it
// is available. The home currency is always exact 1 without any call.
// On any fetch failure the rate is reported unavailable, never as a
// sentinel value: callers decide how to fall back.
func (c *Client) Rate(ctx context.Context, currency string) (decimal.Decimal, bool) {
	currency = strings.ToUpper(currency)
	if currency == HomeCurrency {
		return decimal.NewFromInt(1), true
	}

	if rate, ok := c.cache.Get(currency); ok {
		cacheHits.Inc()
		return rate, true
	}
	cacheMisses.Inc()

	rate, ok := c.fetch(ctx, currency)
	if !ok {
		return decimal.Decimal{}, false
	}

	c.cache.Set(currency, rate)

	return rate, true
}

func (c *Client) fetch(ctx context.Context, currency string) (decimal.Decimal, bool) {
	u, err := url.Parse(c.cfg.BaseURL + "/rate")
	if err != nil {
		c.logger.Error(ctx, "invalid rate service url", "url", c.cfg.BaseURL, "err", err)
		fetchFailures.WithLabelValues("request").Inc()
		return decimal.Decimal{}, false
	}

	q := u.Query()
	q.Set("currency", currency)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		fetchFailures.WithLabelValues("request").Inc()
		return decimal.Decimal{}, false
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error(ctx, "rate request failed", "currency", currency, "err", err)
		fetchFailures.WithLabelValues("request").Inc()
		return decimal.Decimal{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error(ctx, "rate request bad status", "currency", currency, "status", resp.StatusCode)
		fetchFailures.WithLabelValues("status").Inc()
		return decimal.Decimal{}, false
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error(ctx, "rate response decode failed", "currency", currency, "err", err)
		fetchFailures.WithLabelValues("decode").Inc()
		return decimal.Decimal{}, false
	}

	if !body.Rate.IsPositive() {
		c.logger.Error(ctx, "rate response has non-positive rate", "currency", currency, "rate", body.Rate.String())
		fetchFailures.WithLabelValues("value").Inc()
		return decimal.Decimal{}, false
	}

	return body.Rate, true
}
