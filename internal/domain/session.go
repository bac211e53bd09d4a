package domain

import "time"

// WatchlistItem is a symbol the user follows without holding it.
type WatchlistItem struct {
	Symbol  string
	Name    string
	AddedAt time.Time
	Notes   string
}

// Notification is a user-facing message emitted by the core.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	Timestamp time.Time
}

// Session is the complete persisted state of one user session.
type Session struct {
	Portfolio        Portfolio
	Trades           []Trade // Newest first
	Strategies       []Strategy
	Watchlist        []WatchlistItem
	PortfolioHistory []PortfolioSnapshot
}
