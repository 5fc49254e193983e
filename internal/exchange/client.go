// Package exchange proxies a third-party currency conversion service.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"spendtrack/internal/cache"
)

// DefaultTimeout bounds every upstream fetch. Timeouts are not retried;
// the failure surfaces to the caller immediately.
const DefaultTimeout = 10 * time.Second

var (
	// ErrUnavailable reports a transport-level failure reaching the upstream.
	ErrUnavailable = errors.New("exchange rate service unavailable")

	// ErrMalformedResponse reports an upstream body that could not be parsed
	// into the expected rate table shape.
	ErrMalformedResponse = errors.New("malformed exchange rate response")

	// ErrNonPositiveAmount rejects conversion of zero or negative amounts.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// StatusError carries a non-2xx upstream status for passthrough.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// UnknownCurrencyError reports a conversion target absent from the fetched
// rate table.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("currency %s not found in exchange rates", e.Code)
}

// Rates is a fetched rate table for a base currency.
type Rates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	BaseCurrency    string  `json:"base_currency"`
	TargetCurrency  string  `json:"target_currency"`
	Rate            float64 `json:"rate"`
	Amount          float64 `json:"amount"`
	ConvertedAmount float64 `json:"converted_amount"`
}

// Client fetches rate tables from the upstream service. When cacheTTL is
// positive, fetched tables are kept in an LRU cache for that long; the
// default configuration disables the cache so every request sees a fresh
// table.
type Client struct {
	baseURL    string
	httpClient *http.Client
	rateCache  *cache.LRUCache[Rates]
}

func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	if cacheTTL > 0 {
		c.rateCache = cache.NewLRUCache[Rates](32, cacheTTL)
	}
	return c
}

// GetRates fetches the rate table for base. Upstream HTTP errors come back
// as *StatusError, transport failures as ErrUnavailable, and unparseable
// bodies as ErrMalformedResponse.
func (c *Client) GetRates(ctx context.Context, base string) (Rates, error) {
	base = strings.ToUpper(strings.TrimSpace(base))

	if c.rateCache != nil {
		if rates, ok := c.rateCache.Get(base); ok {
			slog.DebugContext(ctx, "Rate table cache hit", "base", base)
			return rates, nil
		}
	}

	url := c.baseURL + "/" + base
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rates{}, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Rates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Rates{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var rates Rates
	if err := json.Unmarshal(body, &rates); err != nil {
		return Rates{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if rates.Rates == nil {
		return Rates{}, fmt.Errorf("%w: missing rates table", ErrMalformedResponse)
	}
	if rates.Base == "" {
		rates.Base = base
	}

	if c.rateCache != nil {
		c.rateCache.Set(base, rates)
	}

	slog.InfoContext(ctx, "Fetched exchange rates",
		"base", base,
		"date", rates.Date,
		"currencies", len(rates.Rates))

	return rates, nil
}

// Convert converts amount from one currency to another. Same-currency
// conversions (case-insensitive) short-circuit to rate 1.0 without touching
// the upstream. An unknown target yields *UnknownCurrencyError.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	if amount <= 0 {
		return Conversion{}, ErrNonPositiveAmount
	}

	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return Conversion{
			BaseCurrency:    from,
			TargetCurrency:  to,
			Rate:            1.0,
			Amount:          amount,
			ConvertedAmount: round2(amount),
		}, nil
	}

	rates, err := c.GetRates(ctx, from)
	if err != nil {
		return Conversion{}, err
	}

	rate, ok := rates.Rates[to]
	if !ok {
		return Conversion{}, &UnknownCurrencyError{Code: to}
	}

	return Conversion{
		BaseCurrency:    from,
		TargetCurrency:  to,
		Rate:            rate,
		Amount:          amount,
		ConvertedAmount: round2(amount * rate),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
