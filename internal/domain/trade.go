package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable record of an executed order.
type Trade struct {
	ID          string
	PortfolioID string
	Symbol      string
	Name        string
	Type        OrderSide
	Shares      int64
	Price       decimal.Decimal
	Total       decimal.Decimal // Shares x Price
	Timestamp   time.Time
	Notes       string // Optional, e.g. the strategy that fired the order
}
