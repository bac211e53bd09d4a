// Package backtesting replays strategies over generated history through the
// portfolio ledger and reports the resulting trajectory and metrics.
package backtesting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockSim/internal/domain"
	"stockSim/internal/ledger"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
	"stockSim/internal/strategy/analytics"
)

// InitialAllocationNote marks the day-0 buys of a run.
const InitialAllocationNote = "Initial allocation"

// State is the lifecycle stage of a Runner.
type State int

const (
	StateConfigured State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "CONFIGURED"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Config holds configuration for a backtest run.
type Config struct {
	InitialCash float64
	StartDate   time.Time
	EndDate     time.Time
	Benchmark   string
	Symbols     []string
	StrategyIDs []string // Empty selects every supplied strategy
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("%w: end %s is not after start %s", ports.ErrInvalidDateRange,
			c.EndDate.Format(domain.DateLayout), c.StartDate.Format(domain.DateLayout))
	}
	if len(c.Symbols) == 0 {
		return ports.ErrNoSymbols
	}
	if c.InitialCash <= 0 {
		return fmt.Errorf("%w: initial cash must be positive", ports.ErrInvalidRequest)
	}
	if strings.TrimSpace(c.Benchmark) == "" {
		return fmt.Errorf("%w: benchmark symbol is required", ports.ErrInvalidRequest)
	}
	return nil
}

// Days is the number of calendar days the run covers, rounded up.
func (c Config) Days() int {
	return int(math.Ceil(c.EndDate.Sub(c.StartDate).Hours() / 24))
}

// Runner executes a single backtest. It moves from Configured to Running to
// Completed and cannot be run twice.
type Runner struct {
	cfg        Config
	strategies []domain.Strategy
	market     ports.MarketData
	engine     *strategy.Engine
	logger     ports.Logger
	clock      func() time.Time

	mu     sync.Mutex
	state  State
	result *domain.BacktestResult
}

// NewRunner validates cfg and creates a runner over the given strategy set.
func NewRunner(cfg Config, strategies []domain.Strategy, market ports.MarketData, engine *strategy.Engine, logger ports.Logger) (*Runner, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for backtest runner")
	}
	if market == nil || engine == nil {
		return nil, fmt.Errorf("%w: market data and strategy engine are required", ports.ErrConfigurationError)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:        cfg,
		strategies: selectStrategies(strategies, cfg.StrategyIDs),
		market:     market,
		engine:     engine,
		logger:     logger,
		clock:      time.Now,
		state:      StateConfigured,
	}, nil
}

// selectStrategies keeps the active strategies named by ids.
func selectStrategies(all []domain.Strategy, ids []string) []domain.Strategy {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var selected []domain.Strategy
	for _, s := range all {
		if !s.IsActive {
			continue
		}
		if len(ids) > 0 && !wanted[s.ID] {
			continue
		}
		selected = append(selected, s)
	}
	return selected
}

// State returns the runner's lifecycle stage.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Result returns the completed result, or nil before completion.
func (r *Runner) Result() *domain.BacktestResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

type symbolSeries struct {
	symbol string
	points []domain.PricePoint
}

// Run executes the backtest to completion. A runner that is not in the
// Configured state returns ErrRunnerUsed.
func (r *Runner) Run(ctx context.Context) (*domain.BacktestResult, error) {
	r.mu.Lock()
	if r.state != StateConfigured {
		r.mu.Unlock()
		return nil, ports.ErrRunnerUsed
	}
	r.state = StateRunning
	r.mu.Unlock()

	days := r.cfg.Days()
	benchmarkSymbol := strings.ToUpper(r.cfg.Benchmark)
	benchmark := r.market.GenerateSeriesEnding(benchmarkSymbol, r.cfg.EndDate, days)
	if len(benchmark) == 0 {
		r.mu.Lock()
		r.state = StateConfigured
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: benchmark %s", ports.ErrUnknownSymbol, benchmarkSymbol)
	}

	tradable := r.tradableSeries(ctx, days, benchmarkSymbol, benchmark)

	r.logger.Info(ctx, "Starting backtest", map[string]interface{}{
		"start":       r.cfg.StartDate.Format(domain.DateLayout),
		"end":         r.cfg.EndDate.Format(domain.DateLayout),
		"days":        days,
		"tradingDays": len(benchmark),
		"symbols":     len(tradable),
		"strategies":  len(r.strategies),
	})

	result := r.simulate(ctx, benchmarkSymbol, benchmark, tradable)

	r.mu.Lock()
	r.state = StateCompleted
	r.result = result
	r.mu.Unlock()

	r.logger.Info(ctx, "Backtest completed", map[string]interface{}{
		"totalReturn":        result.Metrics.TotalReturn,
		"benchmarkReturn":    result.Metrics.BenchmarkReturn,
		"sharpeRatio":        result.Metrics.SharpeRatio,
		"maxDrawdown":        result.Metrics.MaxDrawdown,
		"winRate":            result.Metrics.WinRate,
		"totalTrades":        result.Metrics.TotalTrades,
		"ignoredSellSignals": result.IgnoredSellSignals,
	})
	return result, nil
}

// tradableSeries generates every configured symbol once, skipping unknown ones.
// A traded benchmark symbol shares the benchmark series so conditions on it
// read the same bars the benchmark curve is built from.
func (r *Runner) tradableSeries(ctx context.Context, days int, benchmarkSymbol string, benchmark []domain.PricePoint) []symbolSeries {
	seen := make(map[string]bool)
	var out []symbolSeries
	for _, raw := range r.cfg.Symbols {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		points := benchmark
		if symbol != benchmarkSymbol {
			points = r.market.GenerateSeriesEnding(symbol, r.cfg.EndDate, days)
		}
		if len(points) == 0 {
			r.logger.Warn(ctx, "Skipping symbol without market data", map[string]interface{}{"symbol": symbol})
			continue
		}
		out = append(out, symbolSeries{symbol: symbol, points: points})
	}
	return out
}

func (r *Runner) simulate(ctx context.Context, benchmarkSymbol string, benchmark []domain.PricePoint, tradable []symbolSeries) *domain.BacktestResult {
	initialCash := r.cfg.InitialCash
	book := ledger.NewBook(decimal.NewFromFloat(initialCash), benchmark[0].Date)
	baseClose := benchmark[0].Close

	n := len(benchmark)
	result := &domain.BacktestResult{
		ID:              uuid.NewString(),
		Dates:           make([]time.Time, 0, n),
		PortfolioValues: make([]float64, 0, n),
		BenchmarkValues: make([]float64, 0, n),
	}

	// visible[k] counts the bars of tradable[k] dated on or before the
	// current benchmark day; lastClose only holds symbols with a bar so far.
	visible := make([]int, len(tradable))
	lastClose := make(map[string]float64, len(tradable))
	for i := 0; i < n; i++ {
		date := benchmark[i].Date

		markets := make(map[string]strategy.MarketView, len(tradable)+1)
		markets[benchmarkSymbol] = strategy.MarketView{History: benchmark[:i+1]}
		prices := make(map[string]decimal.Decimal, len(tradable))
		for k, s := range tradable {
			for visible[k] < len(s.points) && !dayOf(s.points[visible[k]].Date).After(dayOf(date)) {
				visible[k]++
			}
			if visible[k] == 0 {
				continue
			}
			history := s.points[:visible[k]]
			markets[s.symbol] = strategy.MarketView{History: history}
			lastClose[s.symbol] = history[len(history)-1].Close
			prices[s.symbol] = decimal.NewFromFloat(lastClose[s.symbol])
		}
		book = ledger.RepriceAll(book, prices)

		if i == 0 {
			book = r.allocate(ctx, book, tradable, lastClose, date)
		}

		value := book.Portfolio.Cash.Add(book.Portfolio.PositionsValue()).InexactFloat64()
		benchValue := initialCash
		if baseClose > 0 {
			benchValue = initialCash * benchmark[i].Close / baseClose
		}
		var previous float64
		if i > 0 {
			previous = result.PortfolioValues[i-1]
		}
		result.Dates = append(result.Dates, date)
		result.PortfolioValues = append(result.PortfolioValues, value)
		result.BenchmarkValues = append(result.BenchmarkValues, benchValue)

		for _, strat := range r.strategies {
			for _, s := range tradable {
				if _, ok := lastClose[s.symbol]; !ok {
					continue
				}
				day := strategy.DayContext{
					Markets:                markets,
					Portfolio:              book.Portfolio,
					PreviousPortfolioValue: previous,
				}
				if !r.engine.Evaluate(ctx, strat, s.symbol, day) {
					continue
				}
				intent := r.engine.Resolve(ctx, strat, s.symbol, day)
				if intent.Side == domain.Sell {
					result.IgnoredSellSignals++
					r.logger.Debug(ctx, "Strategy sell signal not executed", map[string]interface{}{
						"strategy": strat.Name,
						"symbol":   intent.Symbol,
						"date":     date.Format(domain.DateLayout),
						"shares":   intent.Shares,
					})
					continue
				}
				if intent.IsNoop() {
					continue
				}
				book = r.execute(ctx, book, ledger.Order{
					Symbol: intent.Symbol,
					Name:   intent.Symbol,
					Type:   domain.Buy,
					Shares: intent.Shares,
					Price:  intent.Price,
					Notes:  strat.Name,
				}, date)
			}
		}
	}

	trades := make([]domain.Trade, len(book.Trades))
	for i, t := range book.Trades {
		trades[len(trades)-1-i] = t
	}
	result.Trades = trades
	result.Metrics = analytics.ComputeMetrics(initialCash, result.PortfolioValues, result.BenchmarkValues, trades)
	result.Analysis = analytics.AnalyzePerformance(result.Dates, result.PortfolioValues)
	result.CompletedAt = r.clock()
	return result
}

// allocate splits initial cash evenly over the tradable symbols plus one
// cash slot and buys as many whole shares of each as the slot affords at
// its first-day close. Symbols without a bar by then keep their slot in cash.
func (r *Runner) allocate(ctx context.Context, book ledger.Book, tradable []symbolSeries, closes map[string]float64, date time.Time) ledger.Book {
	if len(tradable) == 0 {
		return book
	}
	allocation := r.cfg.InitialCash / float64(len(tradable)+1)
	for _, s := range tradable {
		price, ok := closes[s.symbol]
		if !ok {
			r.logger.Debug(ctx, "No bar on first day, skipping allocation", map[string]interface{}{
				"symbol": s.symbol, "date": date.Format(domain.DateLayout),
			})
			continue
		}
		if price <= 0 {
			continue
		}
		shares := int64(math.Floor(allocation / price))
		if shares <= 0 {
			r.logger.Debug(ctx, "Allocation too small for one share", map[string]interface{}{
				"symbol": s.symbol, "allocation": allocation, "price": price,
			})
			continue
		}
		book = r.execute(ctx, book, ledger.Order{
			Symbol: s.symbol,
			Name:   s.symbol,
			Type:   domain.Buy,
			Shares: shares,
			Price:  decimal.NewFromFloat(price),
			Notes:  InitialAllocationNote,
		}, date)
	}
	return book
}

func (r *Runner) execute(ctx context.Context, book ledger.Book, order ledger.Order, date time.Time) ledger.Book {
	next, trade, err := ledger.ApplyOrder(book, order, date)
	if err != nil {
		r.logger.Warn(ctx, "Backtest order rejected", map[string]interface{}{
			"symbol": order.Symbol,
			"shares": order.Shares,
			"error":  err.Error(),
		})
		return book
	}
	r.logger.Debug(ctx, "Backtest order filled", map[string]interface{}{
		"symbol": trade.Symbol,
		"side":   trade.Type,
		"shares": trade.Shares,
		"price":  trade.Price.String(),
		"notes":  trade.Notes,
	})
	return next
}

// dayOf drops the time of day so bars from different sources compare by date.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
