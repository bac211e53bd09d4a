package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
	"stockSim/internal/ledger"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

var testNow = time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)

func history(closes ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{
			Date:   testNow.AddDate(0, 0, i-len(closes)+1),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: int64(1000 * (i + 1)),
		}
	}
	return points
}

func cashPortfolio(cash string) domain.Portfolio {
	return ledger.NewBook(decimal.RequireFromString(cash), testNow).Portfolio
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(&mockLogger{})
	require.NoError(t, err)
	return e
}

func cond(ind domain.IndicatorType, op domain.ConditionOperator, v float64) domain.Condition {
	return domain.Condition{Indicator: ind, Operator: op, Value: v}
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)

	e, err := NewEngine(&mockLogger{})
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestNewStrategyAndToggle(t *testing.T) {
	s := NewStrategy("Dip buyer", "buys dips",
		[]domain.Condition{cond(domain.IndicatorRSI, domain.OpLessThan, 30)},
		domain.Action{Type: domain.Buy, AmountType: domain.AmountShares, Amount: 5},
		testNow)

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.IsActive)
	assert.NotEmpty(t, s.Conditions[0].ID)
	assert.NotEmpty(t, s.Action.ID)
	require.NoError(t, s.Validate())

	later := testNow.Add(time.Hour)
	on := Toggle(s, later)
	assert.True(t, on.IsActive)
	assert.Equal(t, later, on.UpdatedAt)
	assert.False(t, s.IsActive, "input is not mutated")
	assert.False(t, Toggle(on, later).IsActive)
}

func TestEvaluate_Operators(t *testing.T) {
	e := newTestEngine(t)
	day := DayContext{
		Markets:   map[string]MarketView{"AAPL": {History: history(98, 102)}},
		Portfolio: cashPortfolio("1000"),
	}

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"greater than", cond(domain.IndicatorPrice, domain.OpGreaterThan, 100), true},
		{"less than", cond(domain.IndicatorPrice, domain.OpLessThan, 100), false},
		{"equals within epsilon", cond(domain.IndicatorPrice, domain.OpEquals, 102+1e-12), true},
		{"equals miss", cond(domain.IndicatorPrice, domain.OpEquals, 102.01), false},
		{"greater or equal", cond(domain.IndicatorPrice, domain.OpGreaterThanOrEqual, 102), true},
		{"less or equal", cond(domain.IndicatorPrice, domain.OpLessThanOrEqual, 101.99), false},
		{"crosses above", cond(domain.IndicatorPrice, domain.OpCrossesAbove, 100), true},
		{"crosses above from exact level", cond(domain.IndicatorPrice, domain.OpCrossesAbove, 98), true},
		{"no cross above when already above", cond(domain.IndicatorPrice, domain.OpCrossesAbove, 90), false},
		{"crosses below", cond(domain.IndicatorPrice, domain.OpCrossesBelow, 100), false},
		{"volume", cond(domain.IndicatorVolume, domain.OpGreaterThan, 1500), true},
		{"unknown operator", cond(domain.IndicatorPrice, "BETWEEN", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.Strategy{Conditions: []domain.Condition{tt.cond}}
			assert.Equal(t, tt.want, e.Evaluate(context.Background(), s, "AAPL", day))
		})
	}
}

func TestEvaluate_EmptyConditionsNeverFire(t *testing.T) {
	e := newTestEngine(t)
	day := DayContext{Markets: map[string]MarketView{"AAPL": {History: history(100)}}}
	assert.False(t, e.Evaluate(context.Background(), domain.Strategy{}, "AAPL", day))
}

func TestEvaluate_AllConditionsMustHold(t *testing.T) {
	e := newTestEngine(t)
	day := DayContext{Markets: map[string]MarketView{"AAPL": {History: history(100, 110)}}}

	s := domain.Strategy{Conditions: []domain.Condition{
		cond(domain.IndicatorPrice, domain.OpGreaterThan, 105),
		cond(domain.IndicatorPriceChangePercent, domain.OpGreaterThan, 5),
	}}
	assert.True(t, e.Evaluate(context.Background(), s, "AAPL", day))

	s.Conditions = append(s.Conditions, cond(domain.IndicatorVolume, domain.OpGreaterThan, 1e9))
	assert.False(t, e.Evaluate(context.Background(), s, "AAPL", day))
}

func TestEvaluate_SMARequiresFullWindow(t *testing.T) {
	e := newTestEngine(t)
	closes := make([]float64, 19)
	for i := range closes {
		closes[i] = 100
	}
	s := domain.Strategy{Conditions: []domain.Condition{cond(domain.IndicatorSMA20, domain.OpGreaterThan, 0)}}

	day := DayContext{Markets: map[string]MarketView{"AAPL": {History: history(closes...)}}}
	assert.False(t, e.Evaluate(context.Background(), s, "AAPL", day))

	day.Markets["AAPL"] = MarketView{History: history(append(closes, 100)...)}
	assert.True(t, e.Evaluate(context.Background(), s, "AAPL", day))
}

func TestEvaluate_RSI(t *testing.T) {
	e := newTestEngine(t)
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	day := DayContext{Markets: map[string]MarketView{"KO": {History: history(closes...)}}}

	oversold := domain.Strategy{Conditions: []domain.Condition{cond(domain.IndicatorRSI, domain.OpLessThan, 30)}}
	assert.True(t, e.Evaluate(context.Background(), oversold, "KO", day))

	day.Markets["KO"] = MarketView{History: history(closes[:14]...)}
	assert.False(t, e.Evaluate(context.Background(), oversold, "KO", day), "RSI needs 14 changes")
}

func TestEvaluate_PositionGainPercent(t *testing.T) {
	e := newTestEngine(t)
	book := ledger.NewBook(decimal.NewFromInt(10000), testNow)
	book, _, err := ledger.ApplyOrder(book, ledger.Order{
		Symbol: "AAPL", Type: domain.Buy, Shares: 10, Price: decimal.NewFromInt(100),
	}, testNow)
	require.NoError(t, err)
	book = ledger.RepriceAll(book, map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(112)})

	day := DayContext{
		Markets: map[string]MarketView{
			"AAPL": {History: history(108, 112)},
			"MSFT": {History: history(300, 310)},
		},
		Portfolio: book.Portfolio,
	}
	s := domain.Strategy{Conditions: []domain.Condition{cond(domain.IndicatorPositionGainPercent, domain.OpCrossesAbove, 10)}}

	assert.True(t, e.Evaluate(context.Background(), s, "AAPL", day))
	assert.False(t, e.Evaluate(context.Background(), s, "MSFT", day), "no position means not met")
}

func TestEvaluate_PortfolioValueAndSymbolOverride(t *testing.T) {
	e := newTestEngine(t)
	day := DayContext{
		Markets: map[string]MarketView{
			"SPY":  {History: history(500, 480)},
			"AAPL": {History: history(170, 171)},
		},
		Portfolio:              cashPortfolio("100000"),
		PreviousPortfolioValue: 99000,
	}

	s := domain.Strategy{Conditions: []domain.Condition{
		cond(domain.IndicatorPortfolioValue, domain.OpCrossesAbove, 99500),
		{Indicator: domain.IndicatorPriceChangePercent, Operator: domain.OpLessThan, Value: -3, Symbol: "spy"},
	}}
	assert.True(t, e.Evaluate(context.Background(), s, "AAPL", day))

	day.PreviousPortfolioValue = 0
	assert.False(t, e.Evaluate(context.Background(), s, "AAPL", day))
}

func TestResolve_AmountTypes(t *testing.T) {
	e := newTestEngine(t)
	day := DayContext{
		Markets:   map[string]MarketView{"AAPL": {History: history(99, 100)}},
		Portfolio: cashPortfolio("10000"),
	}

	tests := []struct {
		name   string
		action domain.Action
		want   int64
	}{
		{"shares", domain.Action{Type: domain.Buy, AmountType: domain.AmountShares, Amount: 7}, 7},
		{"percent of portfolio", domain.Action{Type: domain.Buy, AmountType: domain.AmountPercentPortfolio, Amount: 5}, 5},
		{"dollar amount", domain.Action{Type: domain.Buy, AmountType: domain.AmountDollar, Amount: 999}, 9},
		{"buy capped at cash", domain.Action{Type: domain.Buy, AmountType: domain.AmountShares, Amount: 500}, 100},
		{"sell capped at holdings", domain.Action{Type: domain.Sell, AmountType: domain.AmountShares, Amount: 5}, 0},
		{"too small to buy", domain.Action{Type: domain.Buy, AmountType: domain.AmountDollar, Amount: 50}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.Strategy{ID: "s1", Name: "test", Action: tt.action}
			intent := e.Resolve(context.Background(), s, "aapl", day)
			assert.Equal(t, "AAPL", intent.Symbol)
			assert.Equal(t, tt.want, intent.Shares)
			assert.Equal(t, tt.want == 0, intent.IsNoop())
			assert.True(t, decimal.NewFromInt(100).Equal(intent.Price))
		})
	}
}

func TestResolve_ActionSymbolOverride(t *testing.T) {
	e := newTestEngine(t)
	day := DayContext{
		Markets: map[string]MarketView{
			"AAPL": {History: history(100)},
			"SPY":  {History: history(500)},
		},
		Portfolio: cashPortfolio("10000"),
	}
	s := domain.Strategy{Action: domain.Action{Type: domain.Buy, AmountType: domain.AmountDollar, Amount: 2000, Symbol: "SPY"}}

	intent := e.Resolve(context.Background(), s, "AAPL", day)
	assert.Equal(t, "SPY", intent.Symbol)
	assert.Equal(t, int64(4), intent.Shares)

	s.Action.Symbol = "NOPE"
	assert.True(t, e.Resolve(context.Background(), s, "AAPL", day).IsNoop())
}

// A dip-buying rule fires only on days the close fell more than 5% and
// never spends more than the available cash.
func TestDipBuyingScenario(t *testing.T) {
	e := newTestEngine(t)
	s := NewStrategy("Dip", "",
		[]domain.Condition{cond(domain.IndicatorPriceChangePercent, domain.OpLessThan, -5)},
		domain.Action{Type: domain.Buy, AmountType: domain.AmountPercentPortfolio, Amount: 5},
		testNow)

	closes := []float64{100, 94, 95, 90.5, 86, 86, 80}
	book := ledger.NewBook(decimal.NewFromInt(100000), testNow)

	var fired []int
	for i := 1; i < len(closes); i++ {
		day := DayContext{
			Markets:   map[string]MarketView{"AAPL": {History: history(closes[:i+1]...)}},
			Portfolio: book.Portfolio,
		}
		if !e.Evaluate(context.Background(), s, "AAPL", day) {
			continue
		}
		fired = append(fired, i)

		intent := e.Resolve(context.Background(), s, "AAPL", day)
		if intent.IsNoop() {
			continue
		}
		require.LessOrEqual(t, intent.Shares, ledger.MaxAffordableShares(book.Portfolio, intent.Price))

		var err error
		book, _, err = ledger.ApplyOrder(book, ledger.Order{
			Symbol: intent.Symbol, Type: intent.Side, Shares: intent.Shares, Price: intent.Price,
		}, testNow)
		require.NoError(t, err)
		assert.False(t, book.Portfolio.Cash.IsNegative())
	}

	// 100->94 (-6%), 95->90.5 (-4.7%), 90.5->86 (-4.97%), 86->80 (-6.98%)
	assert.Equal(t, []int{1, 6}, fired)
	assert.Len(t, book.Trades, 2)
}
