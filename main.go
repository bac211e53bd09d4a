// stockSim is a paper-trading portfolio simulator over synthetic market data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stockSim/config"
	"stockSim/internal/adapters/logger"
	"stockSim/internal/adapters/notify"
	"stockSim/internal/adapters/sqlite"
	"stockSim/internal/app"
	"stockSim/internal/catalog"
	"stockSim/internal/marketdata"
)

// cli holds the wired components shared by every subcommand.
type cli struct {
	logLevel string

	cfg      *config.Config
	logger   *logger.Logger
	repo     *sqlite.Repository
	catalog  *catalog.Catalog
	market   *marketdata.Generator
	recorder *notify.Recorder
	svc      *app.SessionService
}

func main() {
	c := &cli{}
	root := newRootCmd(c)
	err := root.Execute()
	c.close(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "stocksim",
		Short: "Paper-trade a simulated stock portfolio",
		Long: `stocksim keeps a simulated portfolio backed by synthetic market data.
Buy and sell catalog stocks, track positions, manage strategies and a watchlist.
State is persisted in a local SQLite database between runs.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override LOG_LEVEL (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(portfolioCmd(c))
	root.AddCommand(tradesCmd(c))
	root.AddCommand(tradeCmd(c, "buy"))
	root.AddCommand(tradeCmd(c, "sell"))
	root.AddCommand(refreshCmd(c))
	root.AddCommand(resetCmd(c))
	root.AddCommand(searchCmd(c))
	root.AddCommand(quoteCmd(c))
	root.AddCommand(marketCmd(c))
	root.AddCommand(historyCmd(c))
	root.AddCommand(performanceCmd(c))
	root.AddCommand(strategyCmd(c))
	root.AddCommand(watchCmd(c))
	root.AddCommand(serveCmd(c))
	return root
}

// setup wires configuration, logging, storage, market data and the session service.
func (c *cli) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = logger.ParseLevel(c.logLevel)
	}
	c.cfg = cfg

	// 2. Initialize Logger
	c.logger = logger.New(cfg.LogLevel, cfg.LogFormat)
	c.logger.Debug(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: c.logger})
	if err != nil {
		return fmt.Errorf("failed to initialize database repository: %w", err)
	}
	c.repo = repo

	// 4. Market data
	c.catalog = catalog.Default()
	var opts []marketdata.Option
	if cfg.GeneratorSeed != 0 {
		opts = append(opts, marketdata.WithSeed(cfg.GeneratorSeed))
	}
	c.market = marketdata.New(c.catalog, opts...)

	// 5. Notifications go to the log and are echoed after the command
	c.recorder = notify.NewRecorder(notify.DefaultCapacity)
	notifier := notify.Fanout{notify.NewLogNotifier(c.logger), c.recorder}

	// 6. Session service
	svc, err := app.NewSessionService(cfg, c.logger, repo, c.market, c.catalog, notifier)
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %w", err)
	}
	svc.Load(ctx)
	c.svc = svc
	return nil
}

// close prints the notifications raised by the command and releases the database.
func (c *cli) close(cmd *cobra.Command) {
	if c.recorder != nil {
		items := c.recorder.Drain()
		for i := len(items) - 1; i >= 0; i-- {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", items[i].Type, items[i].Message)
		}
	}
	if c.repo != nil {
		if err := c.repo.Close(); err != nil {
			c.logger.Error(context.Background(), err, "Error closing database repository")
		}
	}
}
