// Package ledger implements the portfolio accounting rules. Every function
// takes a Book by value and returns a new one; inputs are never mutated.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockSim/internal/domain"
	"stockSim/internal/ports"
)

// DefaultPortfolioName is the name given to fresh portfolios.
const DefaultPortfolioName = "My Portfolio"

// Book is a portfolio together with its trade log (newest first).
type Book struct {
	Portfolio domain.Portfolio
	Trades    []domain.Trade
}

// Order is a request to buy or sell whole shares at a fill price.
type Order struct {
	Symbol string
	Name   string
	Type   domain.OrderSide
	Shares int64
	Price  decimal.Decimal
	Notes  string
}

// NewBook creates an empty book funded with initialCash.
func NewBook(initialCash decimal.Decimal, now time.Time) Book {
	p := domain.Portfolio{
		ID:          uuid.NewString(),
		Name:        DefaultPortfolioName,
		Cash:        initialCash,
		InitialCash: initialCash,
		Positions:   []domain.Position{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return Book{Portfolio: p.Recalculate(), Trades: []domain.Trade{}}
}

// Reset discards positions and trades and starts over with newInitialCash.
// A non-positive amount falls back to the default starting balance.
func Reset(newInitialCash decimal.Decimal, now time.Time) Book {
	if !newInitialCash.IsPositive() {
		newInitialCash = decimal.NewFromFloat(domain.DefaultInitialCash)
	}
	return NewBook(newInitialCash, now)
}

// ApplyOrder fills order against book. On rejection the original book is
// returned together with an error wrapping one of the ports ledger errors.
func ApplyOrder(book Book, order Order, now time.Time) (Book, domain.Trade, error) {
	if order.Shares <= 0 {
		return book, domain.Trade{}, fmt.Errorf("%w: got %d", ports.ErrInvalidShares, order.Shares)
	}
	if order.Price.IsNegative() {
		return book, domain.Trade{}, fmt.Errorf("%w: got %s", ports.ErrInvalidPrice, order.Price)
	}

	symbol := strings.ToUpper(strings.TrimSpace(order.Symbol))
	shares := decimal.NewFromInt(order.Shares)
	total := shares.Mul(order.Price)
	portfolio := book.Portfolio

	var positions []domain.Position
	switch order.Type {
	case domain.Buy:
		if total.GreaterThan(portfolio.Cash) {
			return book, domain.Trade{}, fmt.Errorf("%w: max affordable: %d shares",
				ports.ErrInsufficientFunds, MaxAffordableShares(portfolio, order.Price))
		}
		portfolio.Cash = portfolio.Cash.Sub(total)
		positions = buyInto(portfolio.Positions, symbol, order, now)

	case domain.Sell:
		held := HeldShares(portfolio, symbol)
		if held < order.Shares {
			return book, domain.Trade{}, fmt.Errorf("%w: holding %d shares of %s",
				ports.ErrInsufficientShares, held, symbol)
		}
		portfolio.Cash = portfolio.Cash.Add(total)
		positions = sellFrom(portfolio.Positions, symbol, order)

	default:
		return book, domain.Trade{}, fmt.Errorf("%w: got %q", ports.ErrInvalidSide, order.Type)
	}

	portfolio.Positions = positions
	portfolio.UpdatedAt = now
	portfolio = portfolio.Recalculate()

	trade := domain.Trade{
		ID:          uuid.NewString(),
		PortfolioID: portfolio.ID,
		Symbol:      symbol,
		Name:        order.Name,
		Type:        order.Type,
		Shares:      order.Shares,
		Price:       order.Price,
		Total:       total,
		Timestamp:   now,
		Notes:       order.Notes,
	}

	trades := make([]domain.Trade, 0, len(book.Trades)+1)
	trades = append(trades, trade)
	trades = append(trades, book.Trades...)

	return Book{Portfolio: portfolio, Trades: trades}, trade, nil
}

func buyInto(current []domain.Position, symbol string, order Order, now time.Time) []domain.Position {
	positions := make([]domain.Position, 0, len(current)+1)
	merged := false
	for _, pos := range current {
		if pos.Symbol == symbol {
			oldShares := decimal.NewFromInt(pos.Shares)
			newShares := decimal.NewFromInt(pos.Shares + order.Shares)
			cost := oldShares.Mul(pos.AvgCost).Add(decimal.NewFromInt(order.Shares).Mul(order.Price))
			pos.AvgCost = cost.Div(newShares)
			pos.Shares += order.Shares
			pos.CurrentPrice = order.Price
			pos = pos.Recalculate()
			merged = true
		}
		positions = append(positions, pos)
	}
	if !merged {
		name := order.Name
		if name == "" {
			name = symbol
		}
		positions = append(positions, domain.Position{
			ID:           uuid.NewString(),
			Symbol:       symbol,
			Name:         name,
			Shares:       order.Shares,
			AvgCost:      order.Price,
			CurrentPrice: order.Price,
			PurchaseDate: now,
		}.Recalculate())
	}
	return positions
}

func sellFrom(current []domain.Position, symbol string, order Order) []domain.Position {
	positions := make([]domain.Position, 0, len(current))
	for _, pos := range current {
		if pos.Symbol == symbol {
			pos.Shares -= order.Shares
			if pos.Shares == 0 {
				continue
			}
			pos.CurrentPrice = order.Price
			pos = pos.Recalculate()
		}
		positions = append(positions, pos)
	}
	return positions
}

// RepriceAll marks every position whose symbol appears in prices to the new
// price. Cash and the trade log are untouched, so applying the same prices
// twice yields the same book.
func RepriceAll(book Book, prices map[string]decimal.Decimal) Book {
	portfolio := book.Portfolio
	positions := make([]domain.Position, len(portfolio.Positions))
	for i, pos := range portfolio.Positions {
		if price, ok := prices[pos.Symbol]; ok {
			pos.CurrentPrice = price
			pos = pos.Recalculate()
		}
		positions[i] = pos
	}
	portfolio.Positions = positions
	book.Portfolio = portfolio.Recalculate()
	return book
}

// MaxAffordableShares is the largest whole share count cash can buy at price.
func MaxAffordableShares(portfolio domain.Portfolio, price decimal.Decimal) int64 {
	if !price.IsPositive() || !portfolio.Cash.IsPositive() {
		return 0
	}
	q, _ := portfolio.Cash.QuoRem(price, 0)
	return q.IntPart()
}

// HeldShares returns the number of shares held for symbol.
func HeldShares(portfolio domain.Portfolio, symbol string) int64 {
	if pos, ok := portfolio.Position(strings.ToUpper(symbol)); ok {
		return pos.Shares
	}
	return 0
}

// PositionsValue is the market value of all positions.
func PositionsValue(portfolio domain.Portfolio) decimal.Decimal {
	return portfolio.PositionsValue()
}

// Snapshot captures the portfolio's value at now for the value history.
func Snapshot(portfolio domain.Portfolio, now time.Time) domain.PortfolioSnapshot {
	return domain.PortfolioSnapshot{
		Date:           now,
		TotalValue:     portfolio.TotalValue,
		Cash:           portfolio.Cash,
		PositionsValue: portfolio.PositionsValue(),
	}
}
