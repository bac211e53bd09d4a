package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"stockSim/config"
	"stockSim/internal/adapters/logger"
	"stockSim/internal/catalog"
	"stockSim/internal/domain"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
	"stockSim/internal/strategy/backtesting"
	"stockSim/internal/strategy/optimization"
)

// defaultSeed keeps sweeps comparable when GENERATOR_SEED is unset.
const defaultSeed = 42

var scoreFunctions = map[string]func(*domain.BacktestResult) float64{
	"sharpe":   optimization.DefaultScoreFunction,
	"return":   func(r *domain.BacktestResult) float64 { return r.Metrics.TotalReturn },
	"drawdown": func(r *domain.BacktestResult) float64 { return -r.Metrics.MaxDrawdown },
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	var (
		strategiesFile string
		strategyRef    string
		ranges         []string
		symbols        []string
		benchmark      string
		days           int
		cash           float64
		seed           int64
		score          string
		top            int
	)
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Sweep strategy condition thresholds and rank the backtests",
		Long: `optimize backtests one strategy for every combination of condition
thresholds given by --range INDEX:MIN:MAX:STEP. All runs replay the same
seeded history so their results are comparable.`,
		Example:      "  optimize --strategy dip-buyer --range 0:-8:-2:1",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			strategies, err := strategy.LoadStrategiesFile(strategiesFile, time.Now())
			if err != nil {
				return err
			}
			target, err := pickStrategy(strategies, strategyRef)
			if err != nil {
				return err
			}

			paramRanges := make([]optimization.ParameterRange, 0, len(ranges))
			for _, r := range ranges {
				pr, err := parseRange(r)
				if err != nil {
					return err
				}
				paramRanges = append(paramRanges, pr)
			}

			scoreFn, ok := scoreFunctions[strings.ToLower(score)]
			if !ok {
				return fmt.Errorf("%w: unknown score %q (sharpe, return, drawdown)", ports.ErrInvalidRequest, score)
			}
			if seed == 0 {
				seed = defaultSeed
			}

			end := time.Now()
			target.IsActive = true
			opt, err := optimization.NewOptimizer(optimization.OptimizerConfig{
				Backtest: backtesting.Config{
					InitialCash: cash,
					StartDate:   end.AddDate(0, 0, -days),
					EndDate:     end,
					Benchmark:   benchmark,
					Symbols:     symbols,
				},
				Strategy:        target,
				ParameterRanges: paramRanges,
				Seed:            seed,
				ScoreFunction:   scoreFn,
			}, catalog.Default(), appLogger)
			if err != nil {
				return err
			}

			results, err := opt.Optimize(ctx)
			if err != nil {
				return err
			}
			if top > 0 && len(results) > top {
				results = results[:top]
			}
			printResults(target, paramRanges, results)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&strategiesFile, "strategies", cfg.StrategiesFile, "YAML strategies file")
	flags.StringVar(&strategyRef, "strategy", "", "Strategy ID or name (default: first in file)")
	flags.StringArrayVar(&ranges, "range", nil, "Threshold sweep INDEX:MIN:MAX:STEP (repeatable)")
	flags.StringSliceVar(&symbols, "symbols", cfg.BacktestSymbols, "Symbols to trade")
	flags.StringVar(&benchmark, "benchmark", cfg.BenchmarkSymbol, "Benchmark symbol")
	flags.IntVar(&days, "days", cfg.BacktestDays, "Calendar days per backtest")
	flags.Float64Var(&cash, "cash", cfg.InitialCash, "Initial cash")
	flags.Int64Var(&seed, "seed", cfg.GeneratorSeed, "Generator seed shared by all runs")
	flags.StringVar(&score, "score", "sharpe", "Ranking: sharpe, return or drawdown")
	flags.IntVar(&top, "top", 10, "Show the best N results (0 for all)")
	cmd.MarkFlagRequired("range")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Optimization failed")
		os.Exit(1)
	}
}

func pickStrategy(strategies []domain.Strategy, ref string) (domain.Strategy, error) {
	if len(strategies) == 0 {
		return domain.Strategy{}, fmt.Errorf("%w: strategies file is empty", ports.ErrStrategyNotFound)
	}
	if ref == "" {
		return strategies[0], nil
	}
	for _, s := range strategies {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, nil
		}
	}
	return domain.Strategy{}, fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, ref)
}

// parseRange reads INDEX:MIN:MAX:STEP.
func parseRange(s string) (optimization.ParameterRange, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return optimization.ParameterRange{}, fmt.Errorf("%w: range %q must be INDEX:MIN:MAX:STEP", ports.ErrInvalidRequest, s)
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return optimization.ParameterRange{}, fmt.Errorf("%w: range %q: bad index", ports.ErrInvalidRequest, s)
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return optimization.ParameterRange{}, fmt.Errorf("%w: range %q: bad number %q", ports.ErrInvalidRequest, s, parts[i+1])
		}
		vals[i] = v
	}
	return optimization.ParameterRange{ConditionIndex: idx, Min: vals[0], Max: vals[1], Step: vals[2]}, nil
}

func printResults(target domain.Strategy, ranges []optimization.ParameterRange, results []optimization.OptimizationResult) {
	fmt.Printf("Strategy: %s\n\n", target.Name)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	header := []string{"Rank"}
	for _, r := range ranges {
		header = append(header, fmt.Sprintf("%s[%d]", target.Conditions[r.ConditionIndex].Indicator, r.ConditionIndex))
	}
	header = append(header, "Score", "Return%", "Bench%", "Sharpe", "MaxDD%", "Trades")
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	for i, res := range results {
		row := []string{strconv.Itoa(i + 1)}
		for _, v := range res.Values {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		m := res.Result.Metrics
		row = append(row,
			fmt.Sprintf("%.3f", res.Score),
			fmt.Sprintf("%.2f", m.TotalReturn),
			fmt.Sprintf("%.2f", m.BenchmarkReturn),
			fmt.Sprintf("%.2f", m.SharpeRatio),
			fmt.Sprintf("%.2f", m.MaxDrawdown),
			strconv.Itoa(m.TotalTrades),
		)
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	w.Flush()
}
