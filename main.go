package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xhhuango/json"

	"github.com/quantengine/quantengine/alphavantage"
	"github.com/quantengine/quantengine/config"
	"github.com/quantengine/quantengine/marketdata"
	"github.com/quantengine/quantengine/pricing"
)

// greekOrder fixes the report ordering; Greeks maps iterate randomly.
var greekOrder = []string{
	pricing.GreekDelta,
	pricing.GreekGamma,
	pricing.GreekVega,
	pricing.GreekTheta,
	pricing.GreekRho,
}

type pricingReport struct {
	Symbol       string             `json:"symbol,omitempty"`
	Spot         float64            `json:"spot"`
	Strike       float64            `json:"strike"`
	Maturity     float64            `json:"maturity"`
	Notional     float64            `json:"notional"`
	IsCall       bool               `json:"is_call"`
	RiskFreeRate float64            `json:"risk_free_rate"`
	Volatility   float64            `json:"volatility"`
	Price        float64            `json:"price"`
	Greeks       map[string]float64 `json:"greeks"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		symbol   string
		strike   float64
		maturity float64
		notional float64
		put      bool
		spot     float64
		vol      float64
		rate     float64
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "quantengine",
		Short: "Price European equity options and report their Greeks",
		Long: "quantengine prices a European-style equity option with the closed-form\n" +
			"Black-Scholes formula. The market snapshot (spot, volatility, risk-free\n" +
			"rate) is fetched for --symbol, or supplied directly with --spot, --vol\n" +
			"and --rate.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot := &alphavantage.StockData{
				SpotPrice:    spot,
				Volatility:   vol,
				RiskFreeRate: rate,
			}

			if symbol != "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				fetched, err := alphavantage.NewClient(cfg).FetchStockData(symbol)
				if err != nil {
					return err
				}
				// Explicit flags win over fetched values.
				if !cmd.Flags().Changed("spot") {
					snapshot.SpotPrice = fetched.SpotPrice
				}
				if !cmd.Flags().Changed("vol") {
					snapshot.Volatility = fetched.Volatility
				}
				if !cmd.Flags().Changed("rate") {
					snapshot.RiskFreeRate = fetched.RiskFreeRate
				}
			} else if !cmd.Flags().Changed("spot") {
				return fmt.Errorf("either --symbol or --spot/--vol/--rate is required")
			}

			report, err := priceOption(symbol, snapshot, strike, maturity, notional, !put)
			if err != nil {
				return err
			}

			if jsonOut {
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("error marshalling report: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "underlying symbol to fetch market data for (e.g. AAPL)")
	cmd.Flags().Float64VarP(&strike, "strike", "k", 0, "strike price")
	cmd.Flags().Float64VarP(&maturity, "maturity", "t", 0, "time to maturity in years")
	cmd.Flags().Float64VarP(&notional, "notional", "n", 1, "contract notional")
	cmd.Flags().BoolVarP(&put, "put", "p", false, "price a put instead of a call")
	cmd.Flags().Float64Var(&spot, "spot", 0, "override spot price")
	cmd.Flags().Float64Var(&vol, "vol", 0, "override volatility")
	cmd.Flags().Float64Var(&rate, "rate", 0, "override risk-free rate")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	_ = cmd.MarkFlagRequired("strike")
	_ = cmd.MarkFlagRequired("maturity")

	return cmd
}

func priceOption(symbol string, snapshot *alphavantage.StockData, strike, maturity, notional float64, isCall bool) (*pricingReport, error) {
	market := marketdata.New[float64]()
	if err := market.AddRiskFreeRate(maturity, snapshot.RiskFreeRate); err != nil {
		return nil, err
	}
	if err := market.AddVolatility(strike, maturity, snapshot.Volatility); err != nil {
		return nil, err
	}

	option, err := pricing.NewEuropeanOption(pricing.Parameters[float64]{
		Notional: notional,
		Strike:   strike,
		Maturity: maturity,
		Spot:     snapshot.SpotPrice,
		IsCall:   isCall,
	})
	if err != nil {
		return nil, err
	}
	option.SetPricingEngine(pricing.NewBlackScholesEngine[float64]())
	option.UpdateMarketData(market)

	price, err := option.Price()
	if err != nil {
		return nil, err
	}
	greeks, err := option.Greeks()
	if err != nil {
		return nil, err
	}

	return &pricingReport{
		Symbol:       symbol,
		Spot:         snapshot.SpotPrice,
		Strike:       strike,
		Maturity:     maturity,
		Notional:     notional,
		IsCall:       isCall,
		RiskFreeRate: snapshot.RiskFreeRate,
		Volatility:   snapshot.Volatility,
		Price:        price,
		Greeks:       greeks,
	}, nil
}

func printReport(report *pricingReport) {
	fmt.Println("=== Market Data ===")
	fmt.Printf("Spot price: %.4f\n", report.Spot)
	fmt.Printf("Volatility: %.4f\n", report.Volatility)
	fmt.Printf("Risk-free rate: %.4f\n", report.RiskFreeRate)

	fmt.Println("\n=== Pricing Results ===")
	fmt.Printf("Option Price: %.4f\n", report.Price)

	fmt.Println("\n=== Greeks ===")
	for _, name := range greekOrder {
		fmt.Printf("%s: %.6f\n", name, report.Greeks[name])
	}
}
