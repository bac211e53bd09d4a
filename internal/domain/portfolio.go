package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio holds cash and positions for a single session.
type Portfolio struct {
	ID          string
	Name        string
	Cash        decimal.Decimal
	InitialCash decimal.Decimal
	Positions   []Position // Unique by symbol, in order of first purchase

	TotalValue       decimal.Decimal
	TotalGain        decimal.Decimal
	TotalGainPercent decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Position returns the position held for symbol, if any.
func (p Portfolio) Position(symbol string) (Position, bool) {
	for _, pos := range p.Positions {
		if pos.Symbol == symbol {
			return pos, true
		}
	}
	return Position{}, false
}

// PositionsValue sums the market value of every position.
func (p Portfolio) PositionsValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		total = total.Add(pos.MarketValue)
	}
	return total
}

// Recalculate returns a copy with TotalValue, TotalGain and TotalGainPercent recomputed.
func (p Portfolio) Recalculate() Portfolio {
	p.TotalValue = p.Cash.Add(p.PositionsValue())
	p.TotalGain = p.TotalValue.Sub(p.InitialCash)
	if p.InitialCash.IsPositive() {
		p.TotalGainPercent = p.TotalGain.Div(p.InitialCash).Mul(hundred)
	} else {
		p.TotalGainPercent = decimal.Zero
	}
	return p
}

// PortfolioSnapshot is a dated point of the portfolio history.
type PortfolioSnapshot struct {
	Date           time.Time
	TotalValue     decimal.Decimal
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
}
