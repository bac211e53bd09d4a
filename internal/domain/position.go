package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a held quantity of one symbol.
// MarketValue, TotalCost, Gain and GainPercent are derived from Shares,
// AvgCost and CurrentPrice and are only ever set through Recalculate.
type Position struct {
	ID           string
	Symbol       string
	Name         string
	Shares       int64           // Always > 0 while the position exists
	AvgCost      decimal.Decimal // Weighted-average purchase price per share, rounded to decimal.DivisionPrecision digits on merge
	CurrentPrice decimal.Decimal
	PurchaseDate time.Time

	MarketValue decimal.Decimal
	TotalCost   decimal.Decimal
	Gain        decimal.Decimal
	GainPercent decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Recalculate returns a copy of the position with its derived fields recomputed.
func (p Position) Recalculate() Position {
	shares := decimal.NewFromInt(p.Shares)
	p.MarketValue = shares.Mul(p.CurrentPrice)
	p.TotalCost = shares.Mul(p.AvgCost)
	p.Gain = p.MarketValue.Sub(p.TotalCost)
	if p.TotalCost.IsPositive() {
		p.GainPercent = p.Gain.Div(p.TotalCost).Mul(hundred)
	} else {
		p.GainPercent = decimal.Zero
	}
	return p
}
