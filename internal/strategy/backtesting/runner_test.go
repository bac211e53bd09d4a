package backtesting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/catalog"
	"stockSim/internal/domain"
	"stockSim/internal/marketdata"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var (
	startDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) // Monday
	endDate   = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)   // Friday
)

func baseConfig() Config {
	return Config{
		InitialCash: 100000,
		StartDate:   startDate,
		EndDate:     endDate,
		Benchmark:   "SPY",
		Symbols:     []string{"AAPL", "MSFT"},
	}
}

func newRunner(t *testing.T, cfg Config, strategies []domain.Strategy) (*Runner, *mockLogger) {
	t.Helper()
	logger := &mockLogger{}
	engine, err := strategy.NewEngine(logger)
	require.NoError(t, err)
	market := marketdata.New(catalog.Default(), marketdata.WithSeed(99))
	r, err := NewRunner(cfg, strategies, market, engine, logger)
	require.NoError(t, err)
	return r, logger
}

func activeStrategy(name string, action domain.Action, conds ...domain.Condition) domain.Strategy {
	s := strategy.NewStrategy(name, "", conds, action, startDate)
	return strategy.Toggle(s, startDate)
}

func alwaysTrue() domain.Condition {
	return domain.Condition{Indicator: domain.IndicatorPrice, Operator: domain.OpGreaterThan, Value: 0}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"end before start", func(c *Config) { c.EndDate = c.StartDate.AddDate(0, 0, -1) }, ports.ErrInvalidDateRange},
		{"end equals start", func(c *Config) { c.EndDate = c.StartDate }, ports.ErrInvalidDateRange},
		{"no symbols", func(c *Config) { c.Symbols = nil }, ports.ErrNoSymbols},
		{"zero cash", func(c *Config) { c.InitialCash = 0 }, ports.ErrInvalidRequest},
		{"missing benchmark", func(c *Config) { c.Benchmark = " " }, ports.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)

			engine, err := strategy.NewEngine(&mockLogger{})
			require.NoError(t, err)
			_, err = NewRunner(cfg, nil, marketdata.New(catalog.Default()), engine, &mockLogger{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.NoError(t, baseConfig().Validate())
	assert.Equal(t, 60, baseConfig().Days())
}

func TestNewRunner_RequiresLogger(t *testing.T) {
	engine, err := strategy.NewEngine(&mockLogger{})
	require.NoError(t, err)
	_, err = NewRunner(baseConfig(), nil, marketdata.New(catalog.Default()), engine, nil)
	assert.Error(t, err)
}

func TestRunner_UnknownBenchmark(t *testing.T) {
	cfg := baseConfig()
	cfg.Benchmark = "NOPE"
	r, _ := newRunner(t, cfg, nil)

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ports.ErrUnknownSymbol)
	assert.Equal(t, StateConfigured, r.State())
}

func TestRunner_BuyAndHold(t *testing.T) {
	r, _ := newRunner(t, baseConfig(), nil)
	assert.Equal(t, StateConfigured, r.State())
	assert.Nil(t, r.Result())

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, r.State())
	assert.Same(t, result, r.Result())

	// 23 weekdays in January, 21 in February, plus Friday March 1st.
	require.Len(t, result.Dates, 45)
	assert.Len(t, result.PortfolioValues, 45)
	assert.Len(t, result.BenchmarkValues, 45)
	assert.Equal(t, startDate, result.Dates[0])
	assert.Equal(t, endDate, result.Dates[44])
	assert.InDelta(t, 100000.0, result.BenchmarkValues[0], 1e-6)

	require.Len(t, result.Trades, 2)
	for _, tr := range result.Trades {
		assert.Equal(t, domain.Buy, tr.Type)
		assert.Equal(t, InitialAllocationNote, tr.Notes)
		assert.Equal(t, startDate, tr.Timestamp)
		// one third of the cash per symbol
		assert.True(t, tr.Total.LessThanOrEqual(decimal.NewFromFloat(100000.0/3)))
	}
	assert.InDelta(t, 100000.0, result.PortfolioValues[0], 1e-6, "day-0 fills at the close keep value unchanged")
	assert.Equal(t, 2, result.Metrics.TotalTrades)
	assert.Zero(t, result.Metrics.WinRate)
	assert.Zero(t, result.IgnoredSellSignals)
	assert.Len(t, result.Analysis.EquityCurve, 45)
}

func TestRunner_CannotRunTwice(t *testing.T) {
	r, _ := newRunner(t, baseConfig(), nil)
	first, err := r.Run(context.Background())
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ports.ErrRunnerUsed)
	assert.Same(t, first, r.Result())
}

func TestRunner_StrategyBuysAreCappedAndNoted(t *testing.T) {
	buyDaily := activeStrategy("Daily DCA",
		domain.Action{Type: domain.Buy, AmountType: domain.AmountDollar, Amount: 5000},
		alwaysTrue())
	r, _ := newRunner(t, baseConfig(), []domain.Strategy{buyDaily})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	var strategyTrades int
	for i, tr := range result.Trades {
		if i > 0 {
			assert.False(t, tr.Timestamp.Before(result.Trades[i-1].Timestamp), "trades must be chronological")
		}
		if tr.Notes == "Daily DCA" {
			strategyTrades++
			assert.Equal(t, domain.Buy, tr.Type)
		}
	}
	assert.Greater(t, strategyTrades, 0)
	for _, v := range result.PortfolioValues {
		assert.Greater(t, v, 0.0)
	}
}

func TestRunner_SellSignalsAreNotExecuted(t *testing.T) {
	sellDaily := activeStrategy("Take profit",
		domain.Action{Type: domain.Sell, AmountType: domain.AmountShares, Amount: 1},
		alwaysTrue())
	r, _ := newRunner(t, baseConfig(), []domain.Strategy{sellDaily})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	for _, tr := range result.Trades {
		assert.NotEqual(t, domain.Sell, tr.Type)
	}
	// fires every day for each of the two symbols
	assert.Equal(t, 45*2, result.IgnoredSellSignals)
}

func TestRunner_StrategySelection(t *testing.T) {
	buy := domain.Action{Type: domain.Buy, AmountType: domain.AmountShares, Amount: 1}
	selected := activeStrategy("selected", buy, alwaysTrue())
	unselected := activeStrategy("unselected", buy, alwaysTrue())
	inactive := strategy.NewStrategy("inactive", "", []domain.Condition{alwaysTrue()}, buy, startDate)

	cfg := baseConfig()
	cfg.StrategyIDs = []string{selected.ID, inactive.ID}
	r, _ := newRunner(t, cfg, []domain.Strategy{selected, unselected, inactive})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	for _, tr := range result.Trades {
		assert.Contains(t, []string{InitialAllocationNote, "selected"}, tr.Notes)
	}
}

func TestRunner_SkipsUnknownSymbols(t *testing.T) {
	cfg := baseConfig()
	cfg.Symbols = []string{"AAPL", "NOPE", "aapl"}
	r, logger := newRunner(t, cfg, nil)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, "AAPL", result.Trades[0].Symbol)
	assert.Contains(t, logger.warnMsgs, "Skipping symbol without market data")
}

func bar(day int, close float64) domain.PricePoint {
	return domain.PricePoint{
		Date:  time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		Open:  close,
		High:  close,
		Low:   close,
		Close: close,
	}
}

func newReplayRunner(t *testing.T, replay *marketdata.Replay, symbols []string, strategies []domain.Strategy) *Runner {
	t.Helper()
	logger := &mockLogger{}
	engine, err := strategy.NewEngine(logger)
	require.NoError(t, err)
	cfg := Config{
		InitialCash: 1000,
		StartDate:   startDate,
		EndDate:     time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		Benchmark:   "SPY",
		Symbols:     symbols,
	}
	r, err := NewRunner(cfg, strategies, replay, engine, logger)
	require.NoError(t, err)
	return r
}

func TestRunner_ReplayAlignsBarsByDate(t *testing.T) {
	replay := marketdata.NewReplay()
	replay.Add("SPY", []domain.PricePoint{bar(1, 100), bar(2, 100), bar(3, 100), bar(4, 100), bar(5, 100)})
	// no bar on January 2nd
	replay.Add("AAPL", []domain.PricePoint{bar(1, 10), bar(3, 20), bar(4, 20), bar(5, 20)})

	aboveFifteen := activeStrategy("Breakout",
		domain.Action{Type: domain.Buy, AmountType: domain.AmountShares, Amount: 1},
		domain.Condition{Indicator: domain.IndicatorPrice, Operator: domain.OpGreaterThan, Value: 15})

	r := newReplayRunner(t, replay, []string{"AAPL"}, []domain.Strategy{aboveFifteen})
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	// 50 shares at 10 plus 500 cash; Jan 2 keeps the Jan 1 close.
	require.Len(t, result.PortfolioValues, 5)
	assert.InDelta(t, 1000.0, result.PortfolioValues[0], 1e-6)
	assert.InDelta(t, 1000.0, result.PortfolioValues[1], 1e-6)
	assert.InDelta(t, 1500.0, result.PortfolioValues[2], 1e-6)

	jan3 := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	var breakouts int
	for _, tr := range result.Trades {
		if tr.Notes != "Breakout" {
			continue
		}
		breakouts++
		assert.False(t, tr.Timestamp.Before(jan3), "strategy must not see the Jan 3 close before Jan 3")
		assert.True(t, tr.Price.Equal(decimal.NewFromInt(20)))
	}
	assert.Equal(t, 3, breakouts)
}

func TestRunner_ReplaySkipsAllocationBeforeFirstBar(t *testing.T) {
	replay := marketdata.NewReplay()
	replay.Add("SPY", []domain.PricePoint{bar(1, 100), bar(2, 100), bar(3, 100), bar(4, 100), bar(5, 100)})
	replay.Add("AAPL", []domain.PricePoint{bar(3, 20), bar(4, 20), bar(5, 20)})

	r := newReplayRunner(t, replay, []string{"AAPL"}, nil)
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	for _, v := range result.PortfolioValues {
		assert.InDelta(t, 1000.0, v, 1e-6)
	}
}

func TestRunner_TradedBenchmarkSharesSeries(t *testing.T) {
	cfg := baseConfig()
	cfg.Symbols = []string{"spy"}
	r, _ := newRunner(t, cfg, nil)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	fill := result.Trades[0]
	require.Equal(t, "SPY", fill.Symbol)

	shares := float64(fill.Shares)
	price := fill.Price.InexactFloat64()
	cashLeft := cfg.InitialCash - shares*price
	for i, bench := range result.BenchmarkValues {
		spyClose := price * bench / cfg.InitialCash
		assert.InDelta(t, cashLeft+shares*spyClose, result.PortfolioValues[i], 1e-4, "day %d", i)
	}
}
