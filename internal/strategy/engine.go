// Package strategy evaluates user-defined condition/action rules against a
// day of market data and turns fired actions into order intents.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockSim/internal/domain"
	"stockSim/internal/ledger"
	"stockSim/internal/ports"
	"stockSim/internal/strategy/indicators"
)

const equalsEpsilon = 1e-9

// MarketView is one symbol's daily history through the evaluated day, oldest first.
type MarketView struct {
	History []domain.PricePoint
}

// DayContext is everything a strategy may look at on one day.
type DayContext struct {
	Markets                map[string]MarketView
	Portfolio              domain.Portfolio
	PreviousPortfolioValue float64 // 0 when there is no previous day
}

// OrderIntent is the order a fired action resolves to.
type OrderIntent struct {
	StrategyID   string
	StrategyName string
	Symbol       string
	Side         domain.OrderSide
	Shares       int64
	Price        decimal.Decimal
}

// IsNoop reports whether the intent would trade nothing.
func (o OrderIntent) IsNoop() bool {
	return o.Shares <= 0
}

// NewStrategy creates an inactive strategy, assigning IDs where missing.
func NewStrategy(name, description string, conditions []domain.Condition, action domain.Action, now time.Time) domain.Strategy {
	conds := make([]domain.Condition, len(conditions))
	for i, c := range conditions {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		conds[i] = c
	}
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	return domain.Strategy{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		IsActive:    false,
		Conditions:  conds,
		Action:      action,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Toggle flips the strategy's active flag.
func Toggle(s domain.Strategy, now time.Time) domain.Strategy {
	s.IsActive = !s.IsActive
	s.UpdatedAt = now
	return s
}

// Engine evaluates strategies. It holds no per-run state.
type Engine struct {
	logger     ports.Logger
	indicators map[domain.IndicatorType]indicators.Indicator
}

// NewEngine creates a strategy engine.
func NewEngine(logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy engine")
	}
	return &Engine{
		logger: logger,
		indicators: map[domain.IndicatorType]indicators.Indicator{
			domain.IndicatorPriceChangePercent: indicators.NewPriceChangePercent(),
			domain.IndicatorSMA20:              indicators.NewMovingAverage(20),
			domain.IndicatorSMA50:              indicators.NewMovingAverage(50),
			domain.IndicatorSMA200:             indicators.NewMovingAverage(200),
			domain.IndicatorRSI:                indicators.NewRSI(indicators.DefaultRSIPeriod),
		},
	}, nil
}

// Evaluate reports whether every condition of s holds for symbol on the
// context's day. A strategy without conditions never fires.
func (e *Engine) Evaluate(ctx context.Context, s domain.Strategy, symbol string, day DayContext) bool {
	if len(s.Conditions) == 0 {
		return false
	}
	for _, c := range s.Conditions {
		if !e.conditionMet(ctx, c, symbol, day) {
			return false
		}
	}
	return true
}

func (e *Engine) conditionMet(ctx context.Context, c domain.Condition, symbol string, day DayContext) bool {
	target := symbol
	if c.Symbol != "" {
		target = c.Symbol
	}
	target = strings.ToUpper(target)

	current, ok := e.indicatorValue(ctx, c.Indicator, target, day, 0)
	if !ok {
		return false
	}

	switch c.Operator {
	case domain.OpGreaterThan:
		return current > c.Value
	case domain.OpLessThan:
		return current < c.Value
	case domain.OpEquals:
		return math.Abs(current-c.Value) <= equalsEpsilon
	case domain.OpGreaterThanOrEqual:
		return current >= c.Value
	case domain.OpLessThanOrEqual:
		return current <= c.Value
	case domain.OpCrossesAbove, domain.OpCrossesBelow:
		previous, ok := e.indicatorValue(ctx, c.Indicator, target, day, 1)
		if !ok {
			return false
		}
		if c.Operator == domain.OpCrossesAbove {
			return previous <= c.Value && current > c.Value
		}
		return previous >= c.Value && current < c.Value
	default:
		e.logger.Warn(ctx, "Unknown condition operator", map[string]interface{}{"operator": c.Operator})
		return false
	}
}

// indicatorValue computes indicator for symbol as of daysBack days before
// the context's day. ok is false when the value is undefined.
func (e *Engine) indicatorValue(ctx context.Context, ind domain.IndicatorType, symbol string, day DayContext, daysBack int) (float64, bool) {
	history := day.Markets[symbol].History
	if len(history) <= daysBack {
		history = nil
	} else {
		history = history[:len(history)-daysBack]
	}

	switch ind {
	case domain.IndicatorPrice:
		if len(history) == 0 {
			return 0, false
		}
		return history[len(history)-1].Close, true

	case domain.IndicatorVolume:
		if len(history) == 0 {
			return 0, false
		}
		return float64(history[len(history)-1].Volume), true

	case domain.IndicatorPriceChangePercent, domain.IndicatorSMA20, domain.IndicatorSMA50,
		domain.IndicatorSMA200, domain.IndicatorRSI:
		calc := e.indicators[ind]
		value, err := calc.Calculate(ctx, history)
		if err != nil {
			if !errors.Is(err, indicators.ErrInsufficientData) {
				e.logger.Error(ctx, err, "Failed to calculate indicator", map[string]interface{}{
					"indicator": calc.Name(),
					"symbol":    symbol,
				})
			}
			return 0, false
		}
		return value, true

	case domain.IndicatorPortfolioValue:
		if daysBack == 0 {
			return day.Portfolio.TotalValue.InexactFloat64(), true
		}
		if day.PreviousPortfolioValue <= 0 {
			return 0, false
		}
		return day.PreviousPortfolioValue, true

	case domain.IndicatorPositionGainPercent:
		pos, ok := day.Portfolio.Position(symbol)
		if !ok {
			return 0, false
		}
		if daysBack == 0 {
			return pos.GainPercent.InexactFloat64(), true
		}
		avgCost := pos.AvgCost.InexactFloat64()
		if len(history) == 0 || avgCost <= 0 {
			return 0, false
		}
		return (history[len(history)-1].Close - avgCost) / avgCost * 100, true

	default:
		e.logger.Warn(ctx, "Unknown indicator", map[string]interface{}{"indicator": ind})
		return 0, false
	}
}

// Resolve converts the strategy's action into an order intent for the day.
// The action targets its own symbol when set, else the triggering symbol.
// BUY intents never exceed what cash can afford; SELL intents never exceed
// the shares held. An intent that cannot trade anything is a noop.
func (e *Engine) Resolve(ctx context.Context, s domain.Strategy, symbol string, day DayContext) OrderIntent {
	action := s.Action
	target := symbol
	if action.Symbol != "" {
		target = action.Symbol
	}
	target = strings.ToUpper(target)

	intent := OrderIntent{
		StrategyID:   s.ID,
		StrategyName: s.Name,
		Symbol:       target,
		Side:         action.Type,
	}

	history := day.Markets[target].History
	if len(history) == 0 || history[len(history)-1].Close <= 0 {
		e.logger.Debug(ctx, "No price available for action target", map[string]interface{}{
			"strategy": s.Name,
			"symbol":   target,
		})
		return intent
	}
	closePrice := history[len(history)-1].Close
	intent.Price = decimal.NewFromFloat(closePrice)

	var shares int64
	switch action.AmountType {
	case domain.AmountShares:
		shares = int64(math.Floor(action.Amount))
	case domain.AmountPercentPortfolio:
		total := day.Portfolio.Cash.Add(day.Portfolio.PositionsValue()).InexactFloat64()
		shares = int64(math.Floor(total * action.Amount / 100 / closePrice))
	case domain.AmountDollar:
		shares = int64(math.Floor(action.Amount / closePrice))
	default:
		e.logger.Warn(ctx, "Unknown action amount type", map[string]interface{}{"amountType": action.AmountType})
		return intent
	}

	switch action.Type {
	case domain.Buy:
		if affordable := ledger.MaxAffordableShares(day.Portfolio, intent.Price); shares > affordable {
			shares = affordable
		}
	case domain.Sell:
		if held := ledger.HeldShares(day.Portfolio, target); shares > held {
			shares = held
		}
	default:
		shares = 0
	}
	if shares < 0 {
		shares = 0
	}
	intent.Shares = shares
	return intent
}
