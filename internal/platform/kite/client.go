// Package kite is the REST client for the market data gateway that fronts
// the broker: portfolio, quotes, indicators, option chains, and margins.
package kite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sidkap/optadvisor/internal/domain"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Client is the REST client for the market data gateway. It implements
// domain.MarketDataProvider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a gateway client.
//
// baseURL is the gateway root, e.g. "http://localhost:8080/api". The API key
// is sent on every request when non-empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Portfolio returns the current positions and account aggregates.
func (c *Client) Portfolio(ctx context.Context) (domain.Portfolio, error) {
	body, err := c.doGet(ctx, "/portfolio")
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("kite: get portfolio: %w", err)
	}

	var api apiPortfolio
	if err := json.Unmarshal(body, &api); err != nil {
		return domain.Portfolio{}, fmt.Errorf("kite: decode portfolio: %w", err)
	}
	return api.toDomain(), nil
}

// Quote returns the latest price snapshot for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	path := fmt.Sprintf("/quotes/%s", url.PathEscape(symbol))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("kite: get quote %s: %w", symbol, err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return domain.Quote{}, fmt.Errorf("kite: decode quote: %w", err)
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return quote, nil
}

// MarketIndicators returns the technical indicator snapshot for a symbol.
func (c *Client) MarketIndicators(ctx context.Context, symbol string) (domain.MarketIndicators, error) {
	path := fmt.Sprintf("/indicators/%s", url.PathEscape(symbol))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.MarketIndicators{}, fmt.Errorf("kite: get indicators %s: %w", symbol, err)
	}

	var values map[string]float64
	if err := json.Unmarshal(body, &values); err != nil {
		return domain.MarketIndicators{}, fmt.Errorf("kite: decode indicators: %w", err)
	}
	return domain.MarketIndicators{Symbol: symbol, Values: values}, nil
}

// OptionChain returns the option chain for a symbol.
func (c *Client) OptionChain(ctx context.Context, symbol string) ([]domain.OptionQuote, error) {
	path := fmt.Sprintf("/options/%s", url.PathEscape(symbol))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("kite: get option chain %s: %w", symbol, err)
	}

	var api apiOptionChain
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("kite: decode option chain: %w", err)
	}
	return api.Data, nil
}

// Margins returns the account margin snapshot.
func (c *Client) Margins(ctx context.Context) (domain.MarginSummary, error) {
	body, err := c.doGet(ctx, "/margins")
	if err != nil {
		return domain.MarginSummary{}, fmt.Errorf("kite: get margins: %w", err)
	}

	var margin domain.MarginSummary
	if err := json.Unmarshal(body, &margin); err != nil {
		return domain.MarginSummary{}, fmt.Errorf("kite: decode margins: %w", err)
	}
	return margin, nil
}

// doGet issues a GET with bounded retries. Server errors and transport
// failures are retried after a short pause; client errors are not.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrContextDone, ctx.Err())
			case <-time.After(retryBackoff * time.Duration(attempt-1)):
			}
		}

		body, retryable, err := c.tryGet(ctx, path)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) tryGet(ctx context.Context, path string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %v", domain.ErrContextDone, err)
		}
		return nil, true, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, resp.StatusCode >= 500, err
	}
	return body, false, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s: %w", statusCode, bodyStr, domain.ErrProvider)
	}
}
