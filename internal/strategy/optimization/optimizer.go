package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"stockSim/internal/domain"
	"stockSim/internal/marketdata"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
	"stockSim/internal/strategy/backtesting"
)

// maxCombinations bounds the size of a sweep.
const maxCombinations = 10000

// ParameterRange sweeps the threshold of one strategy condition.
type ParameterRange struct {
	ConditionIndex int
	Min            float64
	Max            float64
	Step           float64
}

// OptimizationResult holds one backtest of the sweep.
type OptimizationResult struct {
	Values   []float64 // Threshold per ParameterRange, in range order
	Strategy domain.Strategy
	Result   *domain.BacktestResult
	Score    float64
}

// OptimizerConfig holds configuration for the optimizer
type OptimizerConfig struct {
	Backtest        backtesting.Config
	Strategy        domain.Strategy
	ParameterRanges []ParameterRange
	Seed            int64 // Every run replays the series generated from this seed
	ScoreFunction   func(*domain.BacktestResult) float64
}

// Optimizer implements strategy threshold optimization
type Optimizer struct {
	config  OptimizerConfig
	catalog ports.Catalog
	logger  ports.Logger
}

// NewOptimizer creates a new optimizer instance
func NewOptimizer(config OptimizerConfig, catalog ports.Catalog, logger ports.Logger) (*Optimizer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for optimizer")
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ports.ErrConfigurationError)
	}
	if len(config.ParameterRanges) == 0 {
		return nil, fmt.Errorf("%w: at least one parameter range is required", ports.ErrInvalidRequest)
	}
	for i, pr := range config.ParameterRanges {
		if pr.ConditionIndex < 0 || pr.ConditionIndex >= len(config.Strategy.Conditions) {
			return nil, fmt.Errorf("%w: range %d targets condition %d of %d", ports.ErrInvalidRequest,
				i, pr.ConditionIndex, len(config.Strategy.Conditions))
		}
		if pr.Step <= 0 || pr.Max < pr.Min {
			return nil, fmt.Errorf("%w: range %d must have min <= max and a positive step", ports.ErrInvalidRequest, i)
		}
	}
	if err := config.Backtest.Validate(); err != nil {
		return nil, err
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}

	o := &Optimizer{config: config, catalog: catalog, logger: logger}
	if n := len(o.generateParameterCombinations()); n > maxCombinations {
		return nil, fmt.Errorf("%w: %d combinations exceeds limit of %d", ports.ErrInvalidRequest, n, maxCombinations)
	}
	return o, nil
}

// Optimize backtests every threshold combination concurrently and returns
// the results best first.
func (o *Optimizer) Optimize(ctx context.Context) ([]OptimizationResult, error) {
	combinations := o.generateParameterCombinations()
	results := make([]OptimizationResult, 0, len(combinations))

	resultChan := make(chan OptimizationResult, len(combinations))
	var wg sync.WaitGroup

	for _, values := range combinations {
		wg.Add(1)
		go func(values []float64) {
			defer wg.Done()

			candidate := o.strategyWithValues(values)
			cfg := o.config.Backtest
			cfg.StrategyIDs = []string{candidate.ID}

			engine, err := strategy.NewEngine(o.logger)
			if err != nil {
				o.logger.Error(ctx, err, "Failed to create strategy engine")
				return
			}
			market := marketdata.New(o.catalog, marketdata.WithSeed(o.config.Seed))
			runner, err := backtesting.NewRunner(cfg, []domain.Strategy{candidate}, market, engine, o.logger)
			if err != nil {
				o.logger.Error(ctx, err, "Failed to create backtest runner")
				return
			}
			result, err := runner.Run(ctx)
			if err != nil {
				o.logger.Warn(ctx, "Backtest failed during optimization", map[string]interface{}{
					"values": values,
					"error":  err.Error(),
				})
				return
			}

			resultChan <- OptimizationResult{
				Values:   values,
				Strategy: candidate,
				Result:   result,
				Score:    o.config.ScoreFunction(result),
			}
		}(values)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no backtest completed", ports.ErrUnknown)
	}

	sortResultsByScore(results)

	o.logger.Info(ctx, "Optimization completed", map[string]interface{}{
		"combinations": len(combinations),
		"completed":    len(results),
		"bestValues":   results[0].Values,
		"bestScore":    results[0].Score,
	})
	return results, nil
}

// generateParameterCombinations generates the cartesian product of all ranges
func (o *Optimizer) generateParameterCombinations() [][]float64 {
	var combinations [][]float64
	current := make([]float64, len(o.config.ParameterRanges))

	var generate func(int)
	generate = func(idx int) {
		if idx == len(o.config.ParameterRanges) {
			combinations = append(combinations, append([]float64(nil), current...))
			return
		}
		pr := o.config.ParameterRanges[idx]
		steps := int(math.Floor((pr.Max-pr.Min)/pr.Step + 1e-9))
		for i := 0; i <= steps && len(combinations) <= maxCombinations; i++ {
			current[idx] = pr.Min + float64(i)*pr.Step
			generate(idx + 1)
		}
	}

	generate(0)
	return combinations
}

// strategyWithValues returns an active copy of the strategy with the swept thresholds applied
func (o *Optimizer) strategyWithValues(values []float64) domain.Strategy {
	s := o.config.Strategy
	s.Conditions = append([]domain.Condition(nil), s.Conditions...)
	for i, pr := range o.config.ParameterRanges {
		s.Conditions[pr.ConditionIndex].Value = values[i]
	}
	s.IsActive = true
	return s
}

// sortResultsByScore sorts by score, then total return, best first
func sortResultsByScore(results []OptimizationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Result.Metrics.TotalReturn > results[j].Result.Metrics.TotalReturn
	})
}

// DefaultScoreFunction ranks runs by Sharpe ratio
func DefaultScoreFunction(result *domain.BacktestResult) float64 {
	return result.Metrics.SharpeRatio
}
