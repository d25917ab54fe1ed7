package connectors

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"strategydesk/src/model"
)

const defaultMockPrice = 100.0

// Quoter fetches one live quote.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (*model.MarketData, error)
}

// WatchlistEntry is one dashboard symbol. Ticker is the upstream identifier
// passed to Source.
type WatchlistEntry struct {
	Name   string
	Ticker string
	Source Quoter
}

// MarketDataService serves the dashboard ticker strip. Upstream failures never
// surface as errors: a symbol that cannot be fetched gets a synthetic quote.
type MarketDataService struct {
	entries    []WatchlistEntry
	mockPrices map[string]float64
	now        func() time.Time
}

func NewMarketDataService(entries []WatchlistEntry, mockPrices map[string]float64) *MarketDataService {
	return &MarketDataService{
		entries:    entries,
		mockPrices: mockPrices,
		now:        time.Now,
	}
}

// NewMarketDataServiceFromConfig wires the Yahoo and Binance clients to the
// configured watchlist.
func NewMarketDataServiceFromConfig(config Config) *MarketDataService {
	yahoo := NewYahooClient(config.YahooBaseURL, config.Timeout, config.RetryCount)
	crypto := NewBinanceClient(config.BinanceURL, &http.Client{Timeout: config.Timeout})

	names := make([]string, 0, len(config.YahooSymbols))
	for name := range config.YahooSymbols {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]WatchlistEntry, 0, len(names)+len(config.CryptoPairs))
	for _, name := range names {
		entries = append(entries, WatchlistEntry{Name: name, Ticker: config.YahooSymbols[name], Source: yahoo})
	}
	for _, pair := range config.CryptoPairs {
		entries = append(entries, WatchlistEntry{Name: pair, Ticker: pair, Source: crypto})
	}

	return NewMarketDataService(entries, config.MockPrices)
}

// Snapshot fetches every watchlist symbol concurrently.
func (s *MarketDataService) Snapshot(ctx context.Context) model.MarketDataResponse {
	data := make([]model.MarketData, len(s.entries))
	live := make([]bool, len(s.entries))

	var wg sync.WaitGroup
	for i, entry := range s.entries {
		wg.Add(1)
		go func(i int, entry WatchlistEntry) {
			defer wg.Done()

			quote, err := entry.Source.Quote(ctx, entry.Ticker)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"symbol": entry.Name,
					"ticker": entry.Ticker,
				}).WithError(err).Warn("market data fetch failed, using synthetic quote")

				data[i] = s.syntheticQuote(entry.Name)
				return
			}

			quote.Symbol = entry.Name
			quote.Name = entry.Ticker
			data[i] = *quote
			live[i] = true
		}(i, entry)
	}
	wg.Wait()

	realCount := 0
	for _, ok := range live {
		if ok {
			realCount++
		}
	}

	resp := model.MarketDataResponse{
		Success:       true,
		Data:          data,
		RealDataCount: realCount,
	}

	switch {
	case len(data) > 0 && realCount == len(data):
		resp.Source = model.MarketDataSourceLive
	case realCount > 0:
		resp.Source = model.MarketDataSourceMixed
	default:
		resp.Source = model.MarketDataSourceMock
		resp.Error = "upstream market data unavailable, serving synthetic quotes"
	}

	logrus.WithFields(logrus.Fields{
		"symbols":         len(data),
		"real_data_count": realCount,
		"source":          resp.Source,
	}).Debug("market data snapshot built")

	return resp
}

// syntheticQuote returns a quote within ±1% of the symbol's base price.
func (s *MarketDataService) syntheticQuote(name string) model.MarketData {
	base, ok := s.mockPrices[name]
	if !ok || base <= 0 {
		base = defaultMockPrice
	}

	changePercent := rand.Float64()*2 - 1
	change := base * changePercent / 100
	price := base + change

	return model.MarketData{
		Symbol:        name,
		Name:          name,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		High:          round2(math.Max(price, base) * 1.002),
		Low:           round2(math.Min(price, base) * 0.998),
		Volume:        float64(100000 + rand.Intn(900000)),
		Timestamp:     s.now().UTC(),
		IsMock:        true,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
