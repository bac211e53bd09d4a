package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"stockSim/internal/domain"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
	"stockSim/internal/utils"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func portfolioCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show cash, positions and gains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printPortfolio(cmd.OutOrStdout(), c.svc.Snapshot().Portfolio)
			return nil
		},
	}
}

func printPortfolio(w io.Writer, p domain.Portfolio) {
	fmt.Fprintf(w, "%s\n", p.Name)
	fmt.Fprintf(w, "  Cash:        %s\n", money(p.Cash))
	fmt.Fprintf(w, "  Positions:   %s\n", money(p.PositionsValue()))
	fmt.Fprintf(w, "  Total value: %s\n", money(p.TotalValue))
	fmt.Fprintf(w, "  Total gain:  %s (%s%%)\n\n", money(p.TotalGain), p.TotalGainPercent.StringFixed(2))

	if len(p.Positions) == 0 {
		fmt.Fprintln(w, "No open positions.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SYMBOL\tSHARES\tAVG COST\tPRICE\tVALUE\tGAIN\tGAIN %")
	for _, pos := range p.Positions {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s%%\n",
			pos.Symbol, pos.Shares, money(pos.AvgCost), money(pos.CurrentPrice),
			money(pos.MarketValue), money(pos.Gain), pos.GainPercent.StringFixed(2))
	}
	tw.Flush()
}

func tradesCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List executed trades, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trades := c.svc.Snapshot().Trades
			if limit > 0 && len(trades) > limit {
				trades = trades[:limit]
			}
			if len(trades) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trades yet.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIME\tSIDE\tSYMBOL\tSHARES\tPRICE\tTOTAL\tNOTES")
			for _, t := range trades {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					t.Timestamp.Format(time.DateTime), t.Type, t.Symbol, t.Shares,
					money(t.Price), money(t.Total), t.Notes)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of trades to show (0 for all)")
	return cmd
}

func tradeCmd(c *cli, verb string) *cobra.Command {
	side := domain.Buy
	if verb == "sell" {
		side = domain.Sell
	}
	var price string
	cmd := &cobra.Command{
		Use:   verb + " SYMBOL SHARES",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " whole shares at the current simulated price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: shares must be a whole number, got %q", ports.ErrInvalidShares, args[1])
			}

			var trade domain.Trade
			if price != "" {
				p, perr := decimal.NewFromString(price)
				if perr != nil {
					return fmt.Errorf("%w: %q", ports.ErrInvalidPrice, price)
				}
				trade, err = c.svc.ExecuteTradeAt(cmd.Context(), args[0], side, shares, p)
			} else {
				trade, err = c.svc.ExecuteTrade(cmd.Context(), args[0], side, shares)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s for %s, cash now %s\n",
				trade.Type, trade.Shares, trade.Symbol, money(trade.Total), money(c.svc.Snapshot().Portfolio.Cash))
			return nil
		},
	}
	cmd.Flags().StringVar(&price, "price", "", "Fill at this price instead of the current tick")
	return cmd
}

func refreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Tick prices of held and watched symbols and record a value snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prices := c.svc.RefreshPrices(cmd.Context())
			snap := c.svc.RecordSnapshot(cmd.Context())

			symbols := make([]string, 0, len(prices))
			for s := range prices {
				symbols = append(symbols, s)
			}
			sort.Strings(symbols)

			tw := newTable(cmd.OutOrStdout())
			for _, s := range symbols {
				fmt.Fprintf(tw, "%s\t%s\n", s, money(prices[s]))
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "Total value: %s\n", money(snap.TotalValue))
			return nil
		},
	}
}

func resetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [AMOUNT]",
		Short: "Start over with AMOUNT in cash (default 100000)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := decimal.Zero
			if len(args) == 1 {
				a, err := decimal.NewFromString(args[0])
				if err != nil {
					return fmt.Errorf("%w: invalid amount %q", ports.ErrInvalidRequest, args[0])
				}
				amount = a
			}
			p := c.svc.ResetPortfolio(cmd.Context(), amount)
			fmt.Fprintf(cmd.OutOrStdout(), "Cash: %s\n", money(p.Cash))
			return nil
		},
	}
}

func searchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find stocks and ETFs by symbol or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := c.catalog.Search(strings.Join(args, " "))
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SYMBOL\tNAME\tTYPE\tEXCHANGE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Symbol, r.Name, r.Type, r.Exchange)
			}
			return tw.Flush()
		},
	}
}

func quoteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Show the current simulated price of one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tREF CHANGE\tSECTOR")
			for _, arg := range args {
				stock, ok := c.catalog.Lookup(arg)
				if !ok {
					tw.Flush()
					return fmt.Errorf("%w: %s", ports.ErrUnknownSymbol, strings.ToUpper(arg))
				}
				fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%+.2f%%\t%s\n",
					stock.Symbol, stock.Name, c.market.CurrentPrice(stock.Symbol), stock.ChangePercent, stock.Sector)
			}
			return tw.Flush()
		},
	}
}

func marketCmd(c *cli) *cobra.Command {
	var sector string
	var movers int
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Show index proxies, top movers and sectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if sector != "" {
				stocks := c.catalog.BySector(sector)
				if len(stocks) == 0 {
					return fmt.Errorf("%w: no stocks in sector %q", ports.ErrNotFound, sector)
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tCHANGE")
				for _, s := range stocks {
					fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%+.2f%%\n", s.Symbol, s.Name, s.Price, s.ChangePercent)
				}
				return tw.Flush()
			}

			summary := c.catalog.MarketSummary()
			tw := newTable(w)
			for _, key := range []string{"sp500", "nasdaq", "dow"} {
				q, ok := summary[key]
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%+.2f%%\n", key, q.Symbol, q.Value, q.ChangePercent)
			}
			tw.Flush()

			gainers, losers := c.catalog.TopMovers(movers)
			fmt.Fprintln(w, "\nTop gainers:")
			printMovers(w, gainers)
			fmt.Fprintln(w, "\nTop losers:")
			printMovers(w, losers)
			fmt.Fprintf(w, "\nSectors: %s\n", strings.Join(c.catalog.Sectors(), ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&sector, "sector", "", "List the stocks of one sector")
	cmd.Flags().IntVar(&movers, "movers", 5, "Number of gainers and losers to show")
	return cmd
}

func printMovers(w io.Writer, stocks []domain.Stock) {
	tw := newTable(w)
	for _, s := range stocks {
		fmt.Fprintf(tw, "  %s\t$%.2f\t%+.2f%%\n", s.Symbol, s.Price, s.ChangePercent)
	}
	tw.Flush()
}

func historyCmd(c *cli) *cobra.Command {
	var days int
	var csvPath string
	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show a synthetic daily price series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(args[0])
			series := c.market.GenerateSeries(symbol, days)
			if len(series) == 0 {
				return fmt.Errorf("%w: %s", ports.ErrUnknownSymbol, symbol)
			}
			if csvPath != "" {
				if err := utils.WriteCSVFile(csvPath, func(w io.Writer) error {
					return utils.WritePriceSeriesCSV(w, symbol, series)
				}); err != nil {
					return fmt.Errorf("failed to write %s: %w", csvPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bars to %s\n", len(series), csvPath)
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "DATE\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
			for _, p := range series {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
					p.Date.Format(domain.DateLayout), p.Open, p.High, p.Low, p.Close, p.Volume)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Calendar days of history")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the series to this CSV file instead of printing it")
	return cmd
}

func performanceCmd(c *cli) *cobra.Command {
	var days int
	var csvPath string
	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Show an illustrative portfolio value trajectory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.svc.Snapshot().Portfolio
			points := c.market.PortfolioTrajectory(p.InitialCash.InexactFloat64(), p.TotalValue.InexactFloat64(), days)
			if csvPath != "" {
				return utils.WriteCSVFile(csvPath, func(w io.Writer) error {
					return utils.WriteValuePointsCSV(w, points)
				})
			}
			tw := newTable(cmd.OutOrStdout())
			for _, pt := range points {
				fmt.Fprintf(tw, "%s\t$%.2f\n", pt.Date.Format(domain.DateLayout), pt.Value)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Days of trajectory")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the trajectory to this CSV file")
	return cmd
}

func strategyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Manage trading strategies",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies := c.svc.Snapshot().Strategies
			if len(strategies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No strategies.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tCONDITIONS\tACTION")
			for _, s := range strategies {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", s.ID, s.Name, s.IsActive, describeConditions(s.Conditions), describeAction(s.Action))
			}
			return tw.Flush()
		},
	})

	var (
		description     string
		indicator       string
		operator        string
		value           float64
		conditionSymbol string
		actionType      string
		amountType      string
		amount          float64
		actionSymbol    string
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an inactive strategy with at most one condition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var conditions []domain.Condition
			if indicator != "" {
				conditions = append(conditions, domain.Condition{
					Indicator: domain.IndicatorType(strings.ToUpper(indicator)),
					Operator:  domain.ConditionOperator(strings.ToUpper(operator)),
					Value:     value,
					Symbol:    strings.ToUpper(conditionSymbol),
				})
			}
			action := domain.Action{
				Type:       domain.OrderSide(strings.ToUpper(actionType)),
				AmountType: domain.AmountType(strings.ToUpper(amountType)),
				Amount:     amount,
				Symbol:     strings.ToUpper(actionSymbol),
			}
			s, err := c.svc.AddStrategy(cmd.Context(), args[0], description, conditions, action)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added strategy %s (%s)\n", s.Name, s.ID)
			return nil
		},
	}
	add.Flags().StringVar(&description, "description", "", "Free-form description")
	add.Flags().StringVar(&indicator, "indicator", "", "Condition indicator, e.g. RSI or SMA_20")
	add.Flags().StringVar(&operator, "operator", string(domain.OpLessThan), "Condition operator")
	add.Flags().Float64Var(&value, "value", 0, "Condition threshold")
	add.Flags().StringVar(&conditionSymbol, "condition-symbol", "", "Evaluate the condition on this symbol")
	add.Flags().StringVar(&actionType, "action", string(domain.Buy), "BUY or SELL")
	add.Flags().StringVar(&amountType, "amount-type", string(domain.AmountShares), "SHARES, PERCENT_PORTFOLIO or DOLLAR_AMOUNT")
	add.Flags().Float64Var(&amount, "amount", 1, "Action amount")
	add.Flags().StringVar(&actionSymbol, "action-symbol", "", "Trade this symbol instead of the triggering one")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Add every strategy of a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := strategy.LoadStrategiesFile(args[0], time.Now())
			if err != nil {
				return err
			}
			for _, s := range loaded {
				added, err := c.svc.AddStrategy(cmd.Context(), s.Name, s.Description, s.Conditions, s.Action)
				if err != nil {
					return err
				}
				if s.IsActive {
					if _, err := c.svc.ToggleStrategy(cmd.Context(), added.ID); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d strategies\n", len(loaded))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [FILE]",
		Short: "Write all strategies as YAML to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies := c.svc.Snapshot().Strategies
			if len(args) == 0 {
				return strategy.WriteStrategies(cmd.OutOrStdout(), strategies)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := strategy.WriteStrategies(f, strategies); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle ID",
		Short: "Activate or deactivate a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.svc.ToggleStrategy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s active: %t\n", s.Name, s.IsActive)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.svc.DeleteStrategy(cmd.Context(), args[0])
		},
	})
	return cmd
}

func describeConditions(conds []domain.Condition) string {
	if len(conds) == 0 {
		return "-"
	}
	parts := make([]string, len(conds))
	for i, cond := range conds {
		parts[i] = fmt.Sprintf("%s %s %g", cond.Indicator, cond.Operator, cond.Value)
		if cond.Symbol != "" {
			parts[i] += " on " + cond.Symbol
		}
	}
	return strings.Join(parts, " AND ")
}

func describeAction(a domain.Action) string {
	s := fmt.Sprintf("%s %g %s", a.Type, a.Amount, a.AmountType)
	if a.Symbol != "" {
		s += " of " + a.Symbol
	}
	return s
}

func watchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watchlist",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := c.svc.Snapshot().Watchlist
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Watchlist is empty.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SYMBOL\tNAME\tADDED\tNOTES")
			for _, w := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.Symbol, w.Name, w.AddedAt.Format(domain.DateLayout), w.Notes)
			}
			return tw.Flush()
		},
	})

	var notes string
	add := &cobra.Command{
		Use:   "add SYMBOL",
		Short: "Watch a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := c.svc.AddToWatchlist(cmd.Context(), args[0], notes)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already watched\n", strings.ToUpper(args[0]))
			}
			return nil
		},
	}
	add.Flags().StringVar(&notes, "notes", "", "Optional note")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove SYMBOL",
		Short: "Stop watching a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.svc.RemoveFromWatchlist(cmd.Context(), args[0]) {
				return fmt.Errorf("%w: %s is not watched", ports.ErrNotFound, strings.ToUpper(args[0]))
			}
			return nil
		},
	})
	return cmd
}

func serveCmd(c *cli) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep refreshing prices until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = c.cfg.PriceRefreshInterval
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.svc.RecordSnapshot(ctx)
			err := c.svc.RunPriceRefresh(ctx, interval)
			c.svc.RecordSnapshot(context.Background())
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to PRICE_REFRESH_SECONDS)")
	return cmd
}
