package alphavantage

// StockData is the observed market snapshot handed to the pricing core.
type StockData struct {
	SpotPrice    float64 `json:"spot_price"`
	Volatility   float64 `json:"volatility"`
	RiskFreeRate float64 `json:"risk_free_rate"`
}

type GlobalQuoteResponse struct {
	GlobalQuote GlobalQuote `json:"Global Quote"`
}

type GlobalQuote struct {
	Symbol string `json:"01. symbol"`
	Price  string `json:"05. price"`
}

type TimeSeriesDailyResponse struct {
	Note         string              `json:"Note"`
	ErrorMessage string              `json:"Error Message"`
	TimeSeries   map[string]DailyBar `json:"Time Series (Daily)"`
}

type DailyBar struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

type FredObservationsResponse struct {
	Observations []FredObservation `json:"observations"`
}

type FredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}
