package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	YahooBaseURL string             `envconfig:"MARKET_DATA_YAHOO_URL" default:"https://query1.finance.yahoo.com"`
	BinanceURL   string             `envconfig:"MARKET_DATA_BINANCE_URL" default:"https://api.binance.com"`
	YahooSymbols map[string]string  `envconfig:"MARKET_DATA_YAHOO_SYMBOLS" default:"NIFTY:^NSEI,BANKNIFTY:^NSEBANK,SENSEX:^BSESN,FINNIFTY:NIFTY_FIN_SERVICE.NS"`
	CryptoPairs  []string           `envconfig:"MARKET_DATA_CRYPTO_PAIRS" default:"BTC_USDT,ETH_USDT"`
	MockPrices   map[string]float64 `envconfig:"MARKET_DATA_MOCK_PRICES" default:"NIFTY:19500,BANKNIFTY:44500,SENSEX:65500,FINNIFTY:19800,BTC_USDT:60000,ETH_USDT:3000"`
	Timeout      time.Duration      `envconfig:"MARKET_DATA_TIMEOUT" default:"10s"`
	RetryCount   int                `envconfig:"MARKET_DATA_RETRY_COUNT" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
