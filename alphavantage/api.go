package alphavantage

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantengine/quantengine/config"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"
	defaultFredURL = "https://api.stlouisfed.org"

	// Fallbacks applied when a provider is unavailable. The pricing core
	// never substitutes defaults; only this boundary does.
	defaultVolatility   = 0.30
	defaultRiskFreeRate = 0.05

	rateLimitBackoff = 15 * time.Second
	volatilityWindow = 30
)

// Client fetches the market snapshot used to seed a MarketData store: spot
// price from Alpha Vantage, historical volatility from its daily series, and
// the risk-free rate from FRED's 3-month T-Bill data.
type Client struct {
	apiKey     string
	fredKey    string
	baseURL    string
	fredURL    string
	httpClient *http.Client
	log        *logrus.Logger
	backoff    time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:     cfg.AlphaVantageKey,
		fredKey:    cfg.FredKey,
		baseURL:    defaultBaseURL,
		fredURL:    defaultFredURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logrus.StandardLogger(),
		backoff:    rateLimitBackoff,
	}
}

// FetchStockData combines the real-time price, historical volatility and
// risk-free rate for a symbol. Volatility and rate fall back to defaults
// when their providers fail; a missing spot price is an error.
func (c *Client) FetchStockData(symbol string) (*StockData, error) {
	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)
	quote := &GlobalQuoteResponse{}
	if err := c.get(url, quote); err != nil {
		return nil, err
	}
	if quote.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("failed to fetch stock data for %s", symbol)
	}
	spot, err := strconv.ParseFloat(quote.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid spot price %q: %w", quote.GlobalQuote.Price, err)
	}

	data := &StockData{SpotPrice: spot}

	if data.Volatility, err = c.FetchHistoricalVolatility(symbol); err != nil {
		c.log.WithError(err).Warn("could not calculate volatility, using default")
		data.Volatility = defaultVolatility
	}
	if data.RiskFreeRate, err = c.FetchRiskFreeRate(); err != nil {
		c.log.WithError(err).Warn("could not fetch risk-free rate, using default")
		data.RiskFreeRate = defaultRiskFreeRate
	}
	return data, nil
}

// FetchRiskFreeRate returns the latest 3-month T-Bill yield from FRED as a
// decimal.
func (c *Client) FetchRiskFreeRate() (float64, error) {
	url := fmt.Sprintf("%s/fred/series/observations?series_id=DTB3&api_key=%s&file_type=json&sort_order=desc&limit=1",
		c.fredURL, c.fredKey)

	obs := &FredObservationsResponse{}
	if err := c.get(url, obs); err != nil {
		return 0, err
	}
	if len(obs.Observations) == 0 || obs.Observations[0].Value == "." {
		return 0, fmt.Errorf("no DTB3 observations available")
	}
	rate, err := strconv.ParseFloat(obs.Observations[0].Value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid DTB3 value %q: %w", obs.Observations[0].Value, err)
	}
	return rate / 100, nil
}

// FetchHistoricalVolatility computes annualized volatility from the most
// recent daily closes, retrying once after an API rate-limit note.
func (c *Client) FetchHistoricalVolatility(symbol string) (float64, error) {
	url := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&apikey=%s&outputsize=compact",
		c.baseURL, symbol, c.apiKey)

	series := &TimeSeriesDailyResponse{}
	if err := c.get(url, series); err != nil {
		return 0, err
	}
	if strings.Contains(series.Note, "API call frequency") {
		time.Sleep(c.backoff)
		series = &TimeSeriesDailyResponse{}
		if err := c.get(url, series); err != nil {
			return 0, err
		}
	}
	if series.Note != "" || series.ErrorMessage != "" {
		return defaultVolatility, nil
	}
	if len(series.TimeSeries) == 0 {
		return 0, fmt.Errorf("invalid response format from Alpha Vantage")
	}

	dates := make([]string, 0, len(series.TimeSeries))
	for d := range series.TimeSeries {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > volatilityWindow {
		dates = dates[:volatilityWindow]
	}

	// Oldest close first.
	closes := make([]float64, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		bar := series.TimeSeries[dates[i]]
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid close %q on %s: %w", bar.Close, dates[i], err)
		}
		closes = append(closes, closePrice)
	}
	return HistoricalVolatility(closes)
}

func (c *Client) get(url string, out any) error {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response data: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}
