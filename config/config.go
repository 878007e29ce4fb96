package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries the API credentials for the market data providers. It is
// built once and passed explicitly to whatever needs it; nothing reads keys
// from global state.
type Config struct {
	AlphaVantageKey string
	FredKey         string
}

// Load reads credentials from the environment, loading a .env file first
// when one is present in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AlphaVantageKey: os.Getenv("ALPHA_VANTAGE_KEY"),
		FredKey:         os.Getenv("FRED_KEY"),
	}
	if cfg.AlphaVantageKey == "" {
		return nil, fmt.Errorf("ALPHA_VANTAGE_KEY is not set")
	}
	if cfg.FredKey == "" {
		return nil, fmt.Errorf("FRED_KEY is not set")
	}
	return cfg, nil
}
