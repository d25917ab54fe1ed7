package handler

import (
	"context"
	"net/http"

	"strategydesk/src/connectors"
	"strategydesk/src/model"
)

type marketDataSource interface {
	Snapshot(ctx context.Context) model.MarketDataResponse
}

// MarketDataHandler serves the dashboard ticker strip. It always answers 200;
// degraded upstreams show up in the source field.
func MarketDataHandler(svc marketDataSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Snapshot(r.Context()))
	}
}

func DefaultMarketDataHandler() http.HandlerFunc {
	return MarketDataHandler(connectors.NewMarketDataServiceFromConfig(connectors.GetConfig()))
}
