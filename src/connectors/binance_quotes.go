package connectors

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"

	"strategydesk/src/model"
)

// BinanceClient reads spot tickers for crypto pairs such as BTC_USDT.
type BinanceClient struct {
	exchange goex.API
}

// NewBinanceClient creates a client on endpoint, the global Binance API when empty.
func NewBinanceClient(endpoint string, httpClient *http.Client) *BinanceClient {
	if endpoint == "" {
		endpoint = binance.GLOBAL_API_BASE_URL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	apiConfig := &goex.APIConfig{
		HttpClient: httpClient,
		Endpoint:   endpoint,
	}
	return &BinanceClient{exchange: binance.NewWithConfig(apiConfig)}
}

// Quote fetches the 24h ticker of pair. goex calls are not cancellable, so
// ctx is only checked before the request.
func (c *BinanceClient) Quote(ctx context.Context, pair string) (*model.MarketData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, quote, ok := strings.Cut(strings.ToUpper(pair), "_")
	if !ok || base == "" || quote == "" {
		return nil, fmt.Errorf("invalid crypto pair %q, expected BASE_QUOTE", pair)
	}

	ticker, err := c.exchange.GetTicker(goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote}))
	if err != nil {
		return nil, fmt.Errorf("binance ticker for %s: %w", pair, err)
	}
	if ticker == nil || ticker.Last <= 0 {
		return nil, fmt.Errorf("binance ticker for %s has no last price", pair)
	}

	return &model.MarketData{
		Symbol:    pair,
		Price:     ticker.Last,
		High:      ticker.High,
		Low:       ticker.Low,
		Volume:    ticker.Vol,
		Timestamp: time.Now().UTC(),
	}, nil
}
