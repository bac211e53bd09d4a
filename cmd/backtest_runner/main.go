package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"stockSim/config"
	"stockSim/internal/adapters/logger"
	"stockSim/internal/catalog"
	"stockSim/internal/domain"
	"stockSim/internal/marketdata"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
	"stockSim/internal/strategy/backtesting"
	"stockSim/internal/utils"
)

type options struct {
	strategiesFile string
	strategyIDs    []string
	symbols        []string
	benchmark      string
	start          string
	end            string
	cash           float64
	seed           int64
	historyDir     string
	outDir         string
}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	opts := &options{}
	cmd := &cobra.Command{
		Use:   "backtest_runner",
		Short: "Replay strategies over simulated history and report performance",
		Long: `backtest_runner allocates the initial cash evenly across the symbols,
evaluates every active strategy on each trading day and compares the
portfolio against the benchmark. Strategies are read from a YAML file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, cfg, opts, appLogger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.strategiesFile, "strategies", cfg.StrategiesFile, "YAML strategies file")
	flags.StringSliceVar(&opts.strategyIDs, "strategy-ids", nil, "Only run these strategy IDs")
	flags.StringSliceVar(&opts.symbols, "symbols", cfg.BacktestSymbols, "Symbols to trade")
	flags.StringVar(&opts.benchmark, "benchmark", cfg.BenchmarkSymbol, "Benchmark symbol")
	flags.StringVar(&opts.start, "start", "", "Start date YYYY-MM-DD (default: end minus BACKTEST_DAYS)")
	flags.StringVar(&opts.end, "end", "", "End date YYYY-MM-DD (default: today)")
	flags.Float64Var(&opts.cash, "cash", cfg.InitialCash, "Initial cash")
	flags.Int64Var(&opts.seed, "seed", cfg.GeneratorSeed, "Generator seed (0 seeds from entropy)")
	flags.StringVar(&opts.historyDir, "history-dir", "", "Replay CSV series from this directory instead of generating them")
	flags.StringVar(&opts.outDir, "out", "", "Write equity.csv and trades.csv to this directory")

	if err := cmd.Execute(); err != nil {
		appLogger.Error(context.Background(), err, "Backtest failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *options, appLogger ports.Logger) error {
	// 2. Date range
	end := time.Now()
	if opts.end != "" {
		t, err := time.Parse(domain.DateLayout, opts.end)
		if err != nil {
			return fmt.Errorf("%w: end date %q", ports.ErrInvalidDateRange, opts.end)
		}
		end = t
	}
	start := end.AddDate(0, 0, -cfg.BacktestDays)
	if opts.start != "" {
		t, err := time.Parse(domain.DateLayout, opts.start)
		if err != nil {
			return fmt.Errorf("%w: start date %q", ports.ErrInvalidDateRange, opts.start)
		}
		start = t
	}

	// 3. Strategies
	strategies, err := loadStrategies(opts.strategiesFile, cmd.Flags().Changed("strategies"))
	if err != nil {
		return err
	}
	appLogger.Info(ctx, "Loaded strategies", map[string]interface{}{"file": opts.strategiesFile, "count": len(strategies)})

	// 4. Market data
	var market ports.MarketData
	if opts.historyDir != "" {
		replay, err := loadHistory(ctx, opts.historyDir, appLogger)
		if err != nil {
			return err
		}
		market = replay
	} else {
		var genOpts []marketdata.Option
		if opts.seed != 0 {
			genOpts = append(genOpts, marketdata.WithSeed(opts.seed))
		}
		market = marketdata.New(catalog.Default(), genOpts...)
	}

	// 5. Run
	engine, err := strategy.NewEngine(appLogger)
	if err != nil {
		return err
	}
	runner, err := backtesting.NewRunner(backtesting.Config{
		InitialCash: opts.cash,
		StartDate:   start,
		EndDate:     end,
		Benchmark:   opts.benchmark,
		Symbols:     opts.symbols,
		StrategyIDs: opts.strategyIDs,
	}, strategies, market, engine, appLogger)
	if err != nil {
		return err
	}
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)

	// 6. Export
	if opts.outDir != "" {
		if err := export(opts.outDir, result); err != nil {
			return err
		}
		appLogger.Info(ctx, "Backtest exported", map[string]interface{}{"dir": opts.outDir})
	}
	return nil
}

// loadStrategies reads the strategies file. A missing default file means a
// plain buy-and-hold run; a missing file the user asked for is an error.
func loadStrategies(path string, explicit bool) ([]domain.Strategy, error) {
	if path == "" {
		return nil, nil
	}
	strategies, err := strategy.LoadStrategiesFile(path, time.Now())
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return strategies, nil
}

// loadHistory reads every CSV series in dir concurrently.
func loadHistory(ctx context.Context, dir string, appLogger ports.Logger) (*marketdata.Replay, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no CSV files in %s", ports.ErrNotFound, dir)
	}

	replay := marketdata.NewReplay()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)
	for _, file := range files {
		wg.Add(1)
		go func(filename string) {
			defer wg.Done()

			f, err := os.Open(filename)
			if err != nil {
				mu.Lock()
				errs = append(errs, err.Error())
				mu.Unlock()
				return
			}
			defer f.Close()

			symbol, points, err := utils.ReadPriceSeriesCSV(f)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("%s: %v", filename, err))
				mu.Unlock()
				return
			}
			replay.Add(symbol, points)
			appLogger.Info(ctx, "Loaded price series", map[string]interface{}{
				"file":   filename,
				"symbol": symbol,
				"count":  len(points),
			})
		}(file)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load history: %s", strings.Join(errs, "; "))
	}
	return replay, nil
}

func export(dir string, result *domain.BacktestResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := utils.WriteCSVFile(filepath.Join(dir, "equity.csv"), func(w io.Writer) error {
		return utils.WriteEquityCSV(w, result)
	}); err != nil {
		return fmt.Errorf("failed to write equity curve: %w", err)
	}
	if err := utils.WriteCSVFile(filepath.Join(dir, "trades.csv"), func(w io.Writer) error {
		return utils.WriteTradesCSV(w, result.Trades)
	}); err != nil {
		return fmt.Errorf("failed to write trades: %w", err)
	}
	return nil
}

func printResult(w io.Writer, r *domain.BacktestResult) {
	m := r.Metrics
	fmt.Fprintf(w, "Backtest %s\n", r.ID)
	if len(r.Dates) > 0 {
		fmt.Fprintf(w, "  Period:           %s to %s (%d trading days)\n",
			r.Dates[0].Format(domain.DateLayout), r.Dates[len(r.Dates)-1].Format(domain.DateLayout), len(r.Dates))
		fmt.Fprintf(w, "  Final value:      $%.2f\n", r.PortfolioValues[len(r.PortfolioValues)-1])
	}
	fmt.Fprintf(w, "  Total return:     %.2f%%\n", m.TotalReturn)
	fmt.Fprintf(w, "  Benchmark return: %.2f%%\n", m.BenchmarkReturn)
	fmt.Fprintf(w, "  Sharpe ratio:     %.2f\n", m.SharpeRatio)
	fmt.Fprintf(w, "  Max drawdown:     %.2f%%\n", m.MaxDrawdown)
	fmt.Fprintf(w, "  Win rate:         %.2f%%\n", m.WinRate)
	fmt.Fprintf(w, "  Trades:           %d\n", m.TotalTrades)
	if r.IgnoredSellSignals > 0 {
		fmt.Fprintf(w, "  Sell signals not executed: %d\n", r.IgnoredSellSignals)
	}

	if len(r.Analysis.Drawdowns) > 0 {
		fmt.Fprintln(w, "\nDrawdowns:")
		for _, d := range r.Analysis.Drawdowns {
			end := "open"
			if d.Recovered {
				end = d.EndDate.Format(domain.DateLayout)
			}
			fmt.Fprintf(w, "  %s -> %s  depth %.2f%% (trough %s)\n",
				d.StartDate.Format(domain.DateLayout), end, d.Depth, d.TroughDate.Format(domain.DateLayout))
		}
	}
	if len(r.Analysis.MonthlyReturns) > 0 {
		fmt.Fprintln(w, "\nMonthly returns:")
		for _, mr := range r.Analysis.MonthlyReturns {
			fmt.Fprintf(w, "  %s  %+.2f%%\n", mr.Month.Format("2006-01"), mr.Return)
		}
	}
}
