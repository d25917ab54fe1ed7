package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"strategydesk/src/model"
)

type stubMarketData struct {
	resp model.MarketDataResponse
}

func (s stubMarketData) Snapshot(context.Context) model.MarketDataResponse {
	return s.resp
}

func TestMarketDataHandler(t *testing.T) {
	svc := stubMarketData{resp: model.MarketDataResponse{
		Success: true,
		Data:    []model.MarketData{{Symbol: "NIFTY", Price: 19500.5, IsMock: true}},
		Source:  model.MarketDataSourceMock,
		Error:   "upstream market data unavailable, serving synthetic quotes",
	}}

	rr := httptest.NewRecorder()
	MarketDataHandler(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/market-data", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, true, body["success"])
	require.Equal(t, "mock", body["source"])
	require.Equal(t, float64(0), body["realDataCount"])

	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	quote := data[0].(map[string]interface{})
	require.Equal(t, "NIFTY", quote["symbol"])
	require.Equal(t, true, quote["isMock"])
}
