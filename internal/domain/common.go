package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Valid reports whether the side is BUY or SELL.
func (s OrderSide) Valid() bool {
	return s == Buy || s == Sell
}

// NotificationType classifies user-facing notifications.
type NotificationType string

const (
	NotifySuccess NotificationType = "SUCCESS"
	NotifyError   NotificationType = "ERROR"
	NotifyWarning NotificationType = "WARNING"
	NotifyInfo    NotificationType = "INFO"
)

// DefaultInitialCash is the starting balance of a fresh portfolio.
const DefaultInitialCash = 100000.0

// DateLayout is the calendar-day format used for series and snapshots.
const DateLayout = "2006-01-02"
