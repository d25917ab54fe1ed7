package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"strategydesk/src/model"
)

const (
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 3 * time.Second
)

// YahooClient reads index quotes from the Yahoo Finance chart API.
type YahooClient struct {
	http *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewYahooClient(baseURL string, timeout time.Duration, retryCount int) *YahooClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36")

	return &YahooClient{http: httpClient}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	PreviousClose      float64 `json:"previousClose"`
	DayHigh            float64 `json:"regularMarketDayHigh"`
	DayLow             float64 `json:"regularMarketDayLow"`
	Volume             float64 `json:"regularMarketVolume"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
}

// Quote fetches the latest quote of ticker.
func (c *YahooClient) Quote(ctx context.Context, ticker string) (*model.MarketData, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    "1d",
		}).
		Get("/v8/finance/chart/{ticker}")
	if err != nil {
		return nil, fmt.Errorf("chart request for %s: %w", ticker, err)
	}

	raw := resp.Body()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("chart request for %s: HTTP %d: %s", ticker, resp.StatusCode(), string(raw))
	}

	var decoded chartResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", ticker, err)
	}
	if decoded.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", ticker, decoded.Chart.Error.Description)
	}
	if len(decoded.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart for %s has no result", ticker)
	}

	meta := decoded.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("chart for %s has no market price", ticker)
	}

	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}

	quote := &model.MarketData{
		Symbol:    ticker,
		Price:     meta.RegularMarketPrice,
		High:      meta.DayHigh,
		Low:       meta.DayLow,
		Volume:    meta.Volume,
		Timestamp: time.Unix(meta.RegularMarketTime, 0).UTC(),
	}
	if prev > 0 {
		quote.Change = meta.RegularMarketPrice - prev
		quote.ChangePercent = quote.Change / prev * 100
	}

	return quote, nil
}
