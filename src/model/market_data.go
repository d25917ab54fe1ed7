package model

import "time"

// MarketData is one quote shown on the dashboard ticker strip.
type MarketData struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        float64   `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
	IsMock        bool      `json:"isMock"`
}

const (
	MarketDataSourceLive  = "live"
	MarketDataSourceMixed = "mixed"
	MarketDataSourceMock  = "mock"
)

type MarketDataResponse struct {
	Success       bool         `json:"success"`
	Data          []MarketData `json:"data"`
	Source        string       `json:"source"`
	RealDataCount int          `json:"realDataCount"`
	Error         string       `json:"error,omitempty"`
}
