package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stockSim/config"
	"stockSim/internal/domain"
	"stockSim/internal/ledger"
	"stockSim/internal/ports"
	"stockSim/internal/strategy"
)

// maxHistoryPoints bounds the stored portfolio value history.
const maxHistoryPoints = 1000

// SessionService owns the live session state. Every mutation runs under
// one mutex, so trades and price refreshes never interleave.
type SessionService struct {
	cfg      *config.Config
	logger   ports.Logger
	repo     ports.SessionRepository
	market   ports.MarketData
	catalog  ports.Catalog
	notifier ports.Notifier
	clock    func() time.Time

	mu         sync.Mutex
	book       ledger.Book
	strategies []domain.Strategy
	watchlist  []domain.WatchlistItem
	history    []domain.PortfolioSnapshot
}

// NewSessionService creates a new application service instance.
func NewSessionService(
	cfg *config.Config,
	logger ports.Logger,
	repo ports.SessionRepository,
	market ports.MarketData,
	catalog ports.Catalog,
	notifier ports.Notifier,
) (*SessionService, error) {
	if cfg == nil || logger == nil || repo == nil || market == nil || catalog == nil || notifier == nil {
		return nil, fmt.Errorf("missing required dependencies for SessionService")
	}
	if cfg.InitialCash <= 0 {
		return nil, fmt.Errorf("configuration InitialCash must be positive")
	}

	now := time.Now()
	return &SessionService{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		market:   market,
		catalog:  catalog,
		notifier: notifier,
		clock:    time.Now,
		book:     ledger.NewBook(decimal.NewFromFloat(cfg.InitialCash), now),
	}, nil
}

// Load restores the persisted session. A missing or unreadable snapshot
// leaves a fresh portfolio funded with the configured initial cash.
func (s *SessionService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.repo.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.logger.Info(ctx, "No saved session, starting fresh", map[string]interface{}{"initialCash": s.cfg.InitialCash})
		} else {
			s.logger.Error(ctx, err, "Failed to load session, starting fresh")
		}
		s.book = ledger.NewBook(decimal.NewFromFloat(s.cfg.InitialCash), s.clock())
		s.strategies, s.watchlist, s.history = nil, nil, nil
		return
	}

	s.book = ledger.Book{Portfolio: session.Portfolio, Trades: session.Trades}
	s.strategies = session.Strategies
	s.watchlist = session.Watchlist
	s.history = session.PortfolioHistory
	s.logger.Info(ctx, "Session loaded", map[string]interface{}{
		"portfolioID": session.Portfolio.ID,
		"positions":   len(session.Portfolio.Positions),
		"trades":      len(session.Trades),
		"strategies":  len(session.Strategies),
	})
}

// Snapshot returns a copy of the current session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionService) snapshotLocked() domain.Session {
	p := s.book.Portfolio
	p.Positions = append([]domain.Position(nil), p.Positions...)
	strategies := make([]domain.Strategy, len(s.strategies))
	for i, st := range s.strategies {
		strategies[i] = cloneStrategy(st)
	}
	return domain.Session{
		Portfolio:        p,
		Trades:           append([]domain.Trade(nil), s.book.Trades...),
		Strategies:       strategies,
		Watchlist:        append([]domain.WatchlistItem(nil), s.watchlist...),
		PortfolioHistory: append([]domain.PortfolioSnapshot(nil), s.history...),
	}
}

func cloneStrategy(st domain.Strategy) domain.Strategy {
	st.Conditions = append([]domain.Condition(nil), st.Conditions...)
	return st
}

// persistLocked saves the session. Failures are logged; state stays in memory.
func (s *SessionService) persistLocked(ctx context.Context) {
	session := s.snapshotLocked()
	if err := s.repo.SaveSession(ctx, &session); err != nil {
		s.logger.Error(ctx, err, "Failed to persist session")
	}
}

// ExecuteTrade fills an order for symbol at the current market tick.
func (s *SessionService) ExecuteTrade(ctx context.Context, symbol string, side domain.OrderSide, shares int64) (domain.Trade, error) {
	price := s.market.CurrentPrice(symbol)
	if price <= 0 {
		err := fmt.Errorf("%w: %s", ports.ErrUnknownSymbol, strings.ToUpper(symbol))
		s.notifier.Notify(ctx, domain.NotifyError, err.Error())
		return domain.Trade{}, err
	}
	return s.ExecuteTradeAt(ctx, symbol, side, shares, decimal.NewFromFloat(price))
}

// ExecuteTradeAt fills an order for symbol at price.
func (s *SessionService) ExecuteTradeAt(ctx context.Context, symbol string, side domain.OrderSide, shares int64, price decimal.Decimal) (domain.Trade, error) {
	stock, ok := s.catalog.Lookup(symbol)
	if !ok {
		err := fmt.Errorf("%w: %s", ports.ErrUnknownSymbol, strings.ToUpper(symbol))
		s.notifier.Notify(ctx, domain.NotifyError, err.Error())
		return domain.Trade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, trade, err := ledger.ApplyOrder(s.book, ledger.Order{
		Symbol: stock.Symbol,
		Name:   stock.Name,
		Type:   side,
		Shares: shares,
		Price:  price,
	}, s.clock())
	if err != nil {
		s.logger.Warn(ctx, "Order rejected", map[string]interface{}{
			"symbol": stock.Symbol,
			"side":   side,
			"shares": shares,
			"price":  price.String(),
			"error":  err.Error(),
		})
		s.notifier.Notify(ctx, domain.NotifyError, err.Error())
		return domain.Trade{}, err
	}

	s.book = book
	s.logger.Info(ctx, "Order filled", map[string]interface{}{
		"tradeID": trade.ID,
		"symbol":  trade.Symbol,
		"side":    trade.Type,
		"shares":  trade.Shares,
		"price":   trade.Price.String(),
		"cash":    book.Portfolio.Cash.String(),
	})
	s.notifier.Notify(ctx, domain.NotifySuccess, tradeMessage(trade))
	s.persistLocked(ctx)
	return trade, nil
}

func tradeMessage(t domain.Trade) string {
	verb := "bought"
	if t.Type == domain.Sell {
		verb = "sold"
	}
	return fmt.Sprintf("Successfully %s %d shares of %s at $%s", verb, t.Shares, t.Symbol, t.Price.StringFixed(2))
}

// UpdatePrices marks positions to the given prices.
func (s *SessionService) UpdatePrices(ctx context.Context, prices map[string]decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatePricesLocked(ctx, prices)
}

func (s *SessionService) updatePricesLocked(ctx context.Context, prices map[string]decimal.Decimal) {
	if len(prices) == 0 {
		return
	}
	s.book = ledger.RepriceAll(s.book, prices)
	s.logger.Debug(ctx, "Prices updated", map[string]interface{}{
		"symbols":    len(prices),
		"totalValue": s.book.Portfolio.TotalValue.String(),
	})
	s.persistLocked(ctx)
}

// RefreshPrices ticks every held and watched symbol and reprices the portfolio.
func (s *SessionService) RefreshPrices(ctx context.Context) map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := make([]string, 0, len(s.book.Portfolio.Positions)+len(s.watchlist))
	for _, pos := range s.book.Portfolio.Positions {
		symbols = append(symbols, pos.Symbol)
	}
	for _, w := range s.watchlist {
		symbols = append(symbols, w.Symbol)
	}

	prices := make(map[string]decimal.Decimal, len(symbols))
	for symbol, price := range s.market.CurrentPrices(symbols) {
		prices[symbol] = decimal.NewFromFloat(price)
	}
	s.updatePricesLocked(ctx, prices)
	return prices
}

// RunPriceRefresh refreshes prices every interval until ctx is cancelled.
func (s *SessionService) RunPriceRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive", ports.ErrInvalidRequest)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "Price refresh loop started", map[string]interface{}{"interval": interval.String()})
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Price refresh loop stopped")
			return nil
		case <-ticker.C:
			s.RefreshPrices(ctx)
		}
	}
}

// ResetPortfolio starts over with amount in cash, discarding positions,
// trades and value history. Strategies and the watchlist are kept.
func (s *SessionService) ResetPortfolio(ctx context.Context, amount decimal.Decimal) domain.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.book = ledger.Reset(amount, s.clock())
	s.history = nil
	s.logger.Info(ctx, "Portfolio reset", map[string]interface{}{
		"portfolioID": s.book.Portfolio.ID,
		"initialCash": s.book.Portfolio.InitialCash.String(),
	})
	s.notifier.Notify(ctx, domain.NotifyInfo, "Portfolio has been reset")
	s.persistLocked(ctx)
	return s.book.Portfolio
}

// RecordSnapshot appends the current portfolio value to the history.
func (s *SessionService) RecordSnapshot(ctx context.Context) domain.PortfolioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := ledger.Snapshot(s.book.Portfolio, s.clock())
	s.history = append(s.history, snap)
	if len(s.history) > maxHistoryPoints {
		s.history = s.history[len(s.history)-maxHistoryPoints:]
	}
	s.persistLocked(ctx)
	return snap
}

// AddStrategy validates and stores a new, inactive strategy.
func (s *SessionService) AddStrategy(ctx context.Context, name, description string, conditions []domain.Condition, action domain.Action) (domain.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := strategy.NewStrategy(name, description, conditions, action, s.clock())
	if err := st.Validate(); err != nil {
		return domain.Strategy{}, fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
	}
	s.strategies = append(s.strategies, st)
	s.logger.Info(ctx, "Strategy created", map[string]interface{}{"strategyID": st.ID, "name": st.Name})
	s.persistLocked(ctx)
	return cloneStrategy(st), nil
}

// UpdateStrategy replaces the stored strategy with the same ID.
func (s *SessionService) UpdateStrategy(ctx context.Context, updated domain.Strategy) (domain.Strategy, error) {
	if err := updated.Validate(); err != nil {
		return domain.Strategy{}, fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.strategyIndexLocked(updated.ID)
	if i < 0 {
		return domain.Strategy{}, fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, updated.ID)
	}
	updated.CreatedAt = s.strategies[i].CreatedAt
	updated.UpdatedAt = s.clock()
	s.strategies[i] = cloneStrategy(updated)
	s.persistLocked(ctx)
	return updated, nil
}

// DeleteStrategy removes a strategy by ID.
func (s *SessionService) DeleteStrategy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.strategyIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, id)
	}
	s.strategies = append(s.strategies[:i:i], s.strategies[i+1:]...)
	s.logger.Info(ctx, "Strategy deleted", map[string]interface{}{"strategyID": id})
	s.persistLocked(ctx)
	return nil
}

// ToggleStrategy flips a strategy between active and inactive.
func (s *SessionService) ToggleStrategy(ctx context.Context, id string) (domain.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.strategyIndexLocked(id)
	if i < 0 {
		return domain.Strategy{}, fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, id)
	}
	s.strategies[i] = strategy.Toggle(s.strategies[i], s.clock())
	s.logger.Info(ctx, "Strategy toggled", map[string]interface{}{"strategyID": id, "active": s.strategies[i].IsActive})
	s.persistLocked(ctx)
	return cloneStrategy(s.strategies[i]), nil
}

func (s *SessionService) strategyIndexLocked(id string) int {
	for i, st := range s.strategies {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// AddToWatchlist follows symbol. It reports false when the symbol is already watched.
func (s *SessionService) AddToWatchlist(ctx context.Context, symbol, notes string) (bool, error) {
	stock, ok := s.catalog.Lookup(symbol)
	if !ok {
		return false, fmt.Errorf("%w: %s", ports.ErrUnknownSymbol, strings.ToUpper(symbol))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.watchlist {
		if w.Symbol == stock.Symbol {
			return false, nil
		}
	}
	s.watchlist = append(s.watchlist, domain.WatchlistItem{
		Symbol:  stock.Symbol,
		Name:    stock.Name,
		AddedAt: s.clock(),
		Notes:   notes,
	})
	s.persistLocked(ctx)
	return true, nil
}

// RemoveFromWatchlist stops following symbol. It reports whether it was watched.
func (s *SessionService) RemoveFromWatchlist(ctx context.Context, symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range s.watchlist {
		if w.Symbol == symbol {
			s.watchlist = append(s.watchlist[:i:i], s.watchlist[i+1:]...)
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}
