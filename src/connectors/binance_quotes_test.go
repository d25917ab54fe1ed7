package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMockBinanceServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/time") {
			_, _ = w.Write([]byte(`{"serverTime":1740820500000}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"symbol": "BTCUSDT",
			"lastPrice": "61234.50",
			"bidPrice": "61234.00",
			"askPrice": "61235.00",
			"highPrice": "62000.00",
			"lowPrice": "60000.00",
			"volume": "1234.5",
			"closeTime": 1740820500000
		}`))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestBinanceClientQuote(t *testing.T) {
	srv := newMockBinanceServer(t)
	client := NewBinanceClient(srv.URL, srv.Client())

	quote, err := client.Quote(context.Background(), "btc_usdt")
	require.NoError(t, err)
	require.Equal(t, "btc_usdt", quote.Symbol)
	require.InDelta(t, 61234.5, quote.Price, 0.0001)
	require.InDelta(t, 62000, quote.High, 0.0001)
	require.InDelta(t, 60000, quote.Low, 0.0001)
	require.InDelta(t, 1234.5, quote.Volume, 0.0001)
	require.False(t, quote.Timestamp.IsZero())
}
