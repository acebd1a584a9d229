// Package stocks is the REST client for the financial-data provider's candle
// API, which supplies the stock-price series overlaid on prediction-market
// charts.
package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// Client is the candle API client.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new candle API client.
//
// baseURL is the API root, e.g. "https://finnhub.io/api/v1". apiToken is the
// provider's API key.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetStockSeries returns daily close prices for symbol between from and to
// (unix seconds). Points are in ascending timestamp order as delivered by
// the provider.
func (c *Client) GetStockSeries(ctx context.Context, symbol string, from, to int64) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", "D")
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))
	params.Set("token", c.apiToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/stock/candle?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("stocks: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stocks: candles for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stocks: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("stocks: candles for %s: %w", symbol, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("stocks: candles for %s: %w", symbol, domain.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("stocks: candles for %s: HTTP %d: %s", symbol, resp.StatusCode, body)
	}

	var candles apiCandles
	if err := json.Unmarshal(body, &candles); err != nil {
		return nil, fmt.Errorf("stocks: decode candles: %w", err)
	}
	if candles.Status != "ok" {
		// "no_data" for a valid symbol just means an empty range.
		return []domain.PricePoint{}, nil
	}

	n := len(candles.Timestamps)
	if len(candles.Close) < n {
		n = len(candles.Close)
	}
	points := make([]domain.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, domain.PricePoint{
			Timestamp: candles.Timestamps[i],
			Value:     candles.Close[i],
		})
	}
	return points, nil
}
