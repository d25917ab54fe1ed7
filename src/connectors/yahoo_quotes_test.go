package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const chartBody = `{
	"chart": {
		"result": [{
			"meta": {
				"symbol": "^NSEI",
				"regularMarketPrice": 19600,
				"previousClose": 19500,
				"regularMarketDayHigh": 19650.5,
				"regularMarketDayLow": 19480.25,
				"regularMarketVolume": 250000,
				"regularMarketTime": 1740820500
			}
		}],
		"error": null
	}
}`

func TestYahooClientQuote(t *testing.T) {
	var gotPath, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, 2*time.Second, 0)
	quote, err := client.Quote(context.Background(), "^NSEI")
	require.NoError(t, err)

	require.Equal(t, "/v8/finance/chart/^NSEI", gotPath)
	require.Equal(t, "1d", gotRange)

	require.Equal(t, 19600.0, quote.Price)
	require.Equal(t, 100.0, quote.Change)
	require.InDelta(t, 0.5128, quote.ChangePercent, 0.0001)
	require.Equal(t, 19650.5, quote.High)
	require.Equal(t, 19480.25, quote.Low)
	require.Equal(t, 250000.0, quote.Volume)
	require.Equal(t, time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC), quote.Timestamp)
	require.False(t, quote.IsMock)
}

func TestYahooClientQuote_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "chart error", status: http.StatusOK, body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{name: "empty result", status: http.StatusOK, body: `{"chart":{"result":[],"error":null}}`},
		{name: "no price", status: http.StatusOK, body: `{"chart":{"result":[{"meta":{"regularMarketPrice":0}}],"error":null}}`},
		{name: "not json", status: http.StatusOK, body: `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewYahooClient(srv.URL, 2*time.Second, 0).Quote(context.Background(), "^NSEI")
			require.Error(t, err)
		})
	}
}

func TestYahooClientQuote_NoPriceNamesTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":0}}],"error":null}}`))
	}))
	defer srv.Close()

	_, err := NewYahooClient(srv.URL, 2*time.Second, 0).Quote(context.Background(), "^NSEBANK")
	require.EqualError(t, err, "chart for ^NSEBANK has no market price")
}

func TestYahooClientQuote_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	quote, err := NewYahooClient(srv.URL, 2*time.Second, 1).Quote(context.Background(), "^NSEI")
	require.NoError(t, err)
	require.Equal(t, 19600.0, quote.Price)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
