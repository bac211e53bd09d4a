package ports

import "errors"

// Standard application-level errors.
// Components wrap these with context so callers can match them with errors.Is.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Ledger Errors
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidShares      = errors.New("share count must be positive")
	ErrInvalidPrice       = errors.New("price cannot be negative")
	ErrInvalidSide        = errors.New("order side must be BUY or SELL")

	// Market Data Errors
	ErrUnknownSymbol = errors.New("unknown symbol")

	// Strategy and Backtest Errors
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrNoSymbols        = errors.New("no symbols selected")
	ErrRunnerUsed       = errors.New("backtest runner already used")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
)
