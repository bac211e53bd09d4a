package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stockSim/config"
	"stockSim/internal/adapters/logger"
	"stockSim/internal/catalog"
	"stockSim/internal/domain"
	"stockSim/internal/marketdata"
	"stockSim/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	var (
		symbols []string
		days    int
		endDate string
		seed    int64
		outDir  string
	)
	cmd := &cobra.Command{
		Use:   "generate_history",
		Short: "Write synthetic daily price series to CSV files",
		Long: `generate_history writes one CSV file per symbol. The files can be
replayed by backtest_runner --history-dir so several runs share one history.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			end := time.Now()
			if endDate != "" {
				t, err := time.Parse(domain.DateLayout, endDate)
				if err != nil {
					return fmt.Errorf("invalid end date %q: %w", endDate, err)
				}
				end = t
			}
			start := end.AddDate(0, 0, -days)

			var opts []marketdata.Option
			if seed != 0 {
				opts = append(opts, marketdata.WithSeed(seed))
			}
			gen := marketdata.New(catalog.Default(), opts...)

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			for _, raw := range symbols {
				symbol := strings.ToUpper(strings.TrimSpace(raw))
				series := gen.GenerateSeriesEnding(symbol, end, days)
				if len(series) == 0 {
					appLogger.Warn(ctx, "Unknown symbol, skipping", map[string]interface{}{"symbol": symbol})
					continue
				}

				filename := filepath.Join(outDir, fmt.Sprintf("%s_1d_%s_to_%s.csv", symbol, start.Format("20060102"), end.Format("20060102")))
				if err := utils.WriteCSVFile(filename, func(w io.Writer) error {
					return utils.WritePriceSeriesCSV(w, symbol, series)
				}); err != nil {
					appLogger.Error(ctx, err, "Error writing CSV", map[string]interface{}{"filename": filename})
					return err
				}
				appLogger.Info(ctx, "Saved price series", map[string]interface{}{
					"symbol":   symbol,
					"bars":     len(series),
					"filename": filename,
				})
			}
			return nil
		},
	}

	defaultSymbols := append([]string{cfg.BenchmarkSymbol}, cfg.BacktestSymbols...)
	cmd.Flags().StringSliceVar(&symbols, "symbols", defaultSymbols, "Symbols to generate")
	cmd.Flags().IntVar(&days, "days", cfg.BacktestDays, "Calendar days of history")
	cmd.Flags().StringVar(&endDate, "end", "", "Last day YYYY-MM-DD (default: today)")
	cmd.Flags().Int64Var(&seed, "seed", cfg.GeneratorSeed, "Generator seed (0 seeds from entropy)")
	cmd.Flags().StringVar(&outDir, "out", "data", "Output directory")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error generating history: %v", err)
	}
}
