package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
	"stockSim/internal/ledger"
	"stockSim/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "stocksim-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "nested", "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func sampleSession(t *testing.T) *domain.Session {
	t.Helper()
	now := time.Date(2024, time.March, 13, 14, 30, 0, 0, time.UTC)

	book := ledger.NewBook(decimal.NewFromInt(100000), now)
	orders := []ledger.Order{
		{Symbol: "AAPL", Name: "Apple Inc.", Type: domain.Buy, Shares: 10, Price: decimal.RequireFromString("178.72")},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Type: domain.Buy, Shares: 3, Price: decimal.RequireFromString("378.91")},
		{Symbol: "AAPL", Type: domain.Sell, Shares: 4, Price: decimal.RequireFromString("181.05"), Notes: "trim"},
	}
	for _, o := range orders {
		var err error
		book, _, err = ledger.ApplyOrder(book, o, now)
		require.NoError(t, err)
	}

	return &domain.Session{
		Portfolio: book.Portfolio,
		Trades:    book.Trades,
		Strategies: []domain.Strategy{{
			ID:       "strat-1",
			Name:     "RSI dip",
			IsActive: true,
			Conditions: []domain.Condition{
				{ID: "c1", Indicator: domain.IndicatorRSI, Operator: domain.OpLessThan, Value: 30},
				{ID: "c2", Indicator: domain.IndicatorPrice, Operator: domain.OpGreaterThan, Value: 10, Symbol: "SPY"},
			},
			Action:    domain.Action{ID: "a1", Type: domain.Buy, AmountType: domain.AmountPercentPortfolio, Amount: 5},
			CreatedAt: now,
			UpdatedAt: now,
		}},
		Watchlist: []domain.WatchlistItem{
			{Symbol: "NVDA", Name: "NVIDIA Corporation", AddedAt: now},
			{Symbol: "KO", Name: "Coca-Cola Company", AddedAt: now, Notes: "dividend"},
		},
		PortfolioHistory: []domain.PortfolioSnapshot{ledger.Snapshot(book.Portfolio, now)},
	}
}

func TestRepository_LoadEmpty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.LoadSession(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_SaveAndLoad(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	want := sampleSession(t)
	require.NoError(t, repo.SaveSession(ctx, want))

	got, err := repo.LoadSession(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.Portfolio.ID, got.Portfolio.ID)
	assert.True(t, want.Portfolio.Cash.Equal(got.Portfolio.Cash), "cash %s vs %s", want.Portfolio.Cash, got.Portfolio.Cash)
	assert.True(t, want.Portfolio.TotalValue.Equal(got.Portfolio.TotalValue))
	assert.True(t, want.Portfolio.CreatedAt.Equal(got.Portfolio.CreatedAt))

	require.Len(t, got.Portfolio.Positions, 2)
	assert.Equal(t, "AAPL", got.Portfolio.Positions[0].Symbol)
	assert.Equal(t, int64(6), got.Portfolio.Positions[0].Shares)
	assert.True(t, decimal.RequireFromString("178.72").Equal(got.Portfolio.Positions[0].AvgCost))
	assert.True(t, want.Portfolio.Positions[1].MarketValue.Equal(got.Portfolio.Positions[1].MarketValue))

	require.Len(t, got.Trades, 3)
	assert.Equal(t, domain.Sell, got.Trades[0].Type, "newest first")
	assert.Equal(t, "trim", got.Trades[0].Notes)
	assert.True(t, want.Trades[2].Total.Equal(got.Trades[2].Total))

	require.Len(t, got.Strategies, 1)
	assert.Equal(t, want.Strategies[0].Conditions, got.Strategies[0].Conditions)
	assert.Equal(t, want.Strategies[0].Action, got.Strategies[0].Action)
	assert.True(t, got.Strategies[0].IsActive)

	require.Len(t, got.Watchlist, 2)
	assert.Equal(t, "NVDA", got.Watchlist[0].Symbol)
	assert.Equal(t, "dividend", got.Watchlist[1].Notes)

	require.Len(t, got.PortfolioHistory, 1)
	assert.True(t, want.PortfolioHistory[0].TotalValue.Equal(got.PortfolioHistory[0].TotalValue))
}

func TestRepository_SaveReplacesSnapshot(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, sampleSession(t)))

	fresh := ledger.Reset(decimal.NewFromInt(50000), time.Now())
	require.NoError(t, repo.SaveSession(ctx, &domain.Session{Portfolio: fresh.Portfolio, Trades: fresh.Trades}))

	got, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh.Portfolio.ID, got.Portfolio.ID)
	assert.True(t, decimal.NewFromInt(50000).Equal(got.Portfolio.Cash))
	assert.Empty(t, got.Portfolio.Positions)
	assert.Empty(t, got.Trades)
	assert.Empty(t, got.Strategies)
	assert.Empty(t, got.Watchlist)
}

func TestRepository_SaveNil(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	assert.ErrorIs(t, repo.SaveSession(context.Background(), nil), ports.ErrInvalidRequest)
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}
