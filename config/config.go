package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stockSim/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Portfolio
	InitialCash float64

	// Market data
	PriceRefreshInterval time.Duration
	GeneratorSeed        int64 // 0 seeds from entropy

	// Backtesting
	BenchmarkSymbol string
	BacktestSymbols []string
	BacktestDays    int
	StrategiesFile  string

	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat logger.Format
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.InitialCash, err = getEnvAsFloatRequired("INITIAL_CASH", 100000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CASH: %v", err))
	} else if cfg.InitialCash <= 0 {
		errs = append(errs, "INITIAL_CASH must be positive")
	}

	refreshSeconds, err := getEnvAsIntRequired("PRICE_REFRESH_SECONDS", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PRICE_REFRESH_SECONDS: %v", err))
	} else if refreshSeconds <= 0 {
		errs = append(errs, "PRICE_REFRESH_SECONDS must be positive")
	}
	cfg.PriceRefreshInterval = time.Duration(refreshSeconds) * time.Second

	seed, err := getEnvAsIntRequired("GENERATOR_SEED", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GENERATOR_SEED: %v", err))
	}
	cfg.GeneratorSeed = int64(seed)

	cfg.BenchmarkSymbol = strings.ToUpper(getEnv("BENCHMARK_SYMBOL", "SPY"))
	cfg.BacktestSymbols = getEnvAsList("BACKTEST_SYMBOLS", []string{"AAPL", "MSFT", "GOOGL", "AMZN"})
	if len(cfg.BacktestSymbols) == 0 {
		errs = append(errs, "BACKTEST_SYMBOLS must list at least one symbol")
	}

	cfg.BacktestDays, err = getEnvAsIntRequired("BACKTEST_DAYS", 365)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BACKTEST_DAYS: %v", err))
	} else if cfg.BacktestDays <= 0 {
		errs = append(errs, "BACKTEST_DAYS must be positive")
	}

	cfg.StrategiesFile = getEnv("STRATEGIES_FILE", "strategies.yaml")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/simulator.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	switch format := strings.ToLower(getEnv("LOG_FORMAT", "console")); format {
	case "console":
		cfg.LogFormat = logger.FormatConsole
	case "json":
		cfg.LogFormat = logger.FormatJSON
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be console or json, got %q", format))
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

// getEnvAsList splits a comma separated value into upper-cased, non-empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(valueStr, ",") {
		if item := strings.ToUpper(strings.TrimSpace(part)); item != "" {
			items = append(items, item)
		}
	}
	return items
}
