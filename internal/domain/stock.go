package domain

// Stock is immutable reference data for a tradable symbol.
type Stock struct {
	Symbol        string  // Unique ticker, upper case
	Name          string  // Company or fund name
	Sector        string  // e.g. "Technology", "ETF"
	Exchange      string  // e.g. "NASDAQ", "NYSE"
	Price         float64 // Reference (base) price used by the generator
	Change        float64 // Reference daily change
	ChangePercent float64 // Reference daily change percent
	Volume        int64   // Reference daily volume
	MarketCap     int64
}

// IsETF reports whether the stock is an exchange traded fund.
func (s Stock) IsETF() bool {
	return s.Sector == "ETF"
}

// SearchResult is a catalog search hit.
type SearchResult struct {
	Symbol   string
	Name     string
	Exchange string
	Type     string // "Stock" or "ETF"
}
