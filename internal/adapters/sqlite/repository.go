package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"stockSim/internal/domain"
	"stockSim/internal/ports"
)

// Repository implements ports.SessionRepository using SQLite. The database
// holds a single session snapshot that is replaced on every save.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/simulator.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS portfolio (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cash TEXT NOT NULL,
		initial_cash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		symbol TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		shares INTEGER NOT NULL CHECK (shares > 0),
		avg_cost TEXT NOT NULL,
		current_price TEXT NOT NULL,
		purchase_date TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		portfolio_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		shares INTEGER NOT NULL,
		price TEXT NOT NULL,
		total TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL,
		conditions TEXT NOT NULL,
		action TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS watchlist (
		symbol TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		added_at TIMESTAMP NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS portfolio_history (
		seq INTEGER PRIMARY KEY,
		date TIMESTAMP NOT NULL,
		total_value TEXT NOT NULL,
		cash TEXT NOT NULL,
		positions_value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades (symbol);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

var sessionTables = []string{"portfolio", "positions", "trades", "strategies", "watchlist", "portfolio_history"}

// SaveSession replaces the stored snapshot with s in one transaction.
func (r *Repository) SaveSession(ctx context.Context, s *domain.Session) error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ports.ErrInvalidRequest)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ports.ErrUpdateFailed, err)
	}
	defer tx.Rollback()

	for _, table := range sessionTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clear %s: %v", ports.ErrUpdateFailed, table, err)
		}
	}

	p := s.Portfolio
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO portfolio (id, name, cash, initial_cash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Cash, p.InitialCash, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("%w: insert portfolio %s: %v", ports.ErrUpdateFailed, p.ID, err)
	}

	for i, pos := range p.Positions {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO positions (id, seq, symbol, name, shares, avg_cost, current_price, purchase_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			pos.ID, i, pos.Symbol, pos.Name, pos.Shares, pos.AvgCost, pos.CurrentPrice, pos.PurchaseDate); err != nil {
			return fmt.Errorf("%w: insert position %s: %v", ports.ErrUpdateFailed, pos.Symbol, err)
		}
	}

	for i, t := range s.Trades {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO trades (id, seq, portfolio_id, symbol, name, type, shares, price, total, timestamp, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, t.PortfolioID, t.Symbol, t.Name, string(t.Type), t.Shares, t.Price, t.Total, t.Timestamp, t.Notes); err != nil {
			return fmt.Errorf("%w: insert trade %s: %v", ports.ErrUpdateFailed, t.ID, err)
		}
	}

	for i, st := range s.Strategies {
		conditions, err := json.Marshal(st.Conditions)
		if err != nil {
			return fmt.Errorf("failed to encode conditions of strategy %s: %w", st.ID, err)
		}
		action, err := json.Marshal(st.Action)
		if err != nil {
			return fmt.Errorf("failed to encode action of strategy %s: %w", st.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO strategies (id, seq, name, description, is_active, conditions, action, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, i, st.Name, st.Description, st.IsActive, string(conditions), string(action), st.CreatedAt, st.UpdatedAt); err != nil {
			return fmt.Errorf("%w: insert strategy %s: %v", ports.ErrUpdateFailed, st.ID, err)
		}
	}

	for i, w := range s.Watchlist {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO watchlist (symbol, seq, name, added_at, notes) VALUES (?, ?, ?, ?, ?)`,
			w.Symbol, i, w.Name, w.AddedAt, w.Notes); err != nil {
			return fmt.Errorf("%w: insert watchlist item %s: %v", ports.ErrUpdateFailed, w.Symbol, err)
		}
	}

	for i, h := range s.PortfolioHistory {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO portfolio_history (seq, date, total_value, cash, positions_value) VALUES (?, ?, ?, ?, ?)`,
			i, h.Date, h.TotalValue, h.Cash, h.PositionsValue); err != nil {
			return fmt.Errorf("%w: insert history point: %v", ports.ErrUpdateFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit session: %v", ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Session saved", map[string]interface{}{
		"portfolioID": p.ID,
		"positions":   len(p.Positions),
		"trades":      len(s.Trades),
		"strategies":  len(s.Strategies),
	})
	return nil
}

// LoadSession reads the stored snapshot. It returns ports.ErrNotFound when
// nothing has been saved yet.
func (r *Repository) LoadSession(ctx context.Context) (*domain.Session, error) {
	s := &domain.Session{}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, cash, initial_cash, created_at, updated_at FROM portfolio LIMIT 1`)
	p := &s.Portfolio
	if err := row.Scan(&p.ID, &p.Name, &p.Cash, &p.InitialCash, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load portfolio: %v", ports.ErrQueryFailed, err)
	}

	var err error
	if p.Positions, err = r.loadPositions(ctx); err != nil {
		return nil, err
	}
	*p = p.Recalculate()

	if s.Trades, err = r.loadTrades(ctx); err != nil {
		return nil, err
	}
	if s.Strategies, err = r.loadStrategies(ctx); err != nil {
		return nil, err
	}
	if s.Watchlist, err = r.loadWatchlist(ctx); err != nil {
		return nil, err
	}
	if s.PortfolioHistory, err = r.loadHistory(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) loadPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, symbol, name, shares, avg_cost, current_price, purchase_date
	FROM positions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query positions: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	positions := make([]domain.Position, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan position: %v", ports.ErrQueryFailed, err)
		}
		positions = append(positions, pos.Recalculate())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}
	return positions, nil
}

func (r *Repository) loadTrades(ctx context.Context) ([]domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, portfolio_id, symbol, name, type, shares, price, total, timestamp, notes
	FROM trades ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query trades: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan trade: %v", ports.ErrQueryFailed, err)
		}
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

func (r *Repository) loadStrategies(ctx context.Context) ([]domain.Strategy, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, description, is_active, conditions, action, created_at, updated_at
	FROM strategies ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query strategies: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	strategies := make([]domain.Strategy, 0)
	for rows.Next() {
		var st domain.Strategy
		var conditions, action string
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.IsActive, &conditions, &action,
			&st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan strategy: %v", ports.ErrQueryFailed, err)
		}
		if err := json.Unmarshal([]byte(conditions), &st.Conditions); err != nil {
			return nil, fmt.Errorf("failed to decode conditions of strategy %s: %w", st.ID, err)
		}
		if err := json.Unmarshal([]byte(action), &st.Action); err != nil {
			return nil, fmt.Errorf("failed to decode action of strategy %s: %w", st.ID, err)
		}
		strategies = append(strategies, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy rows: %w", err)
	}
	return strategies, nil
}

func (r *Repository) loadWatchlist(ctx context.Context) ([]domain.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol, name, added_at, notes FROM watchlist ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query watchlist: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	items := make([]domain.WatchlistItem, 0)
	for rows.Next() {
		var w domain.WatchlistItem
		if err := rows.Scan(&w.Symbol, &w.Name, &w.AddedAt, &w.Notes); err != nil {
			return nil, fmt.Errorf("%w: scan watchlist item: %v", ports.ErrQueryFailed, err)
		}
		items = append(items, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist rows: %w", err)
	}
	return items, nil
}

func (r *Repository) loadHistory(ctx context.Context) ([]domain.PortfolioSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, total_value, cash, positions_value FROM portfolio_history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query portfolio history: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	history := make([]domain.PortfolioSnapshot, 0)
	for rows.Next() {
		var h domain.PortfolioSnapshot
		if err := rows.Scan(&h.Date, &h.TotalValue, &h.Cash, &h.PositionsValue); err != nil {
			return nil, fmt.Errorf("%w: scan history point: %v", ports.ErrQueryFailed, err)
		}
		history = append(history, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(s scanner) (domain.Position, error) {
	var p domain.Position
	err := s.Scan(&p.ID, &p.Symbol, &p.Name, &p.Shares, &p.AvgCost, &p.CurrentPrice, &p.PurchaseDate)
	return p, err
}

func scanTrade(s scanner) (domain.Trade, error) {
	var t domain.Trade
	var side string
	err := s.Scan(&t.ID, &t.PortfolioID, &t.Symbol, &t.Name, &side, &t.Shares, &t.Price, &t.Total, &t.Timestamp, &t.Notes)
	t.Type = domain.OrderSide(side)
	return t, err
}
