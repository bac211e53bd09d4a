package ports

import (
	"time"

	"stockSim/internal/domain"
)

// Catalog is the static stock reference lookup.
type Catalog interface {
	// Lookup returns the stock for symbol (case-insensitive).
	Lookup(symbol string) (domain.Stock, bool)
	// Search returns up to 10 matches on symbol or name substring.
	Search(query string) []domain.SearchResult
}

// MarketData produces synthetic prices. Unknown symbols yield empty results.
type MarketData interface {
	// GenerateSeries returns daily bars for the last days calendar days, ending today.
	GenerateSeries(symbol string, days int) []domain.PricePoint
	// GenerateSeriesEnding returns daily bars for the days calendar days ending at end.
	GenerateSeriesEnding(symbol string, end time.Time, days int) []domain.PricePoint
	// CurrentPrice returns a live tick for symbol, or 0 if unknown.
	CurrentPrice(symbol string) float64
	// CurrentPrices returns live ticks for every known symbol.
	CurrentPrices(symbols []string) map[string]float64
}
