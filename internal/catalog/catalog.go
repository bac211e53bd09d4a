package catalog

import (
	"sort"
	"strings"

	"stockSim/internal/domain"
)

// MaxSearchResults caps the number of hits returned by Search.
const MaxSearchResults = 10

// Catalog is a read-only symbol index over reference stock data.
type Catalog struct {
	stocks   []domain.Stock
	bySymbol map[string]int
}

// New creates a catalog over the given stocks. Later duplicates of a symbol are ignored.
func New(stocks []domain.Stock) *Catalog {
	c := &Catalog{
		stocks:   make([]domain.Stock, 0, len(stocks)),
		bySymbol: make(map[string]int, len(stocks)),
	}
	for _, s := range stocks {
		key := strings.ToUpper(s.Symbol)
		if _, dup := c.bySymbol[key]; dup {
			continue
		}
		c.bySymbol[key] = len(c.stocks)
		c.stocks = append(c.stocks, s)
	}
	return c
}

// Default returns a catalog over the built-in stock table.
func Default() *Catalog {
	return New(stockTable)
}

// Lookup returns the stock for symbol, ignoring case.
func (c *Catalog) Lookup(symbol string) (domain.Stock, bool) {
	i, ok := c.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return domain.Stock{}, false
	}
	return c.stocks[i], true
}

// All returns every stock in table order.
func (c *Catalog) All() []domain.Stock {
	return append([]domain.Stock(nil), c.stocks...)
}

// Search matches query against symbols and names, case-insensitively,
// keeping table order and returning at most MaxSearchResults hits.
func (c *Catalog) Search(query string) []domain.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	results := make([]domain.SearchResult, 0, MaxSearchResults)
	for _, s := range c.stocks {
		if !strings.Contains(strings.ToLower(s.Symbol), q) && !strings.Contains(strings.ToLower(s.Name), q) {
			continue
		}
		kind := "Stock"
		if s.IsETF() {
			kind = "ETF"
		}
		results = append(results, domain.SearchResult{
			Symbol:   s.Symbol,
			Name:     s.Name,
			Exchange: s.Exchange,
			Type:     kind,
		})
		if len(results) == MaxSearchResults {
			break
		}
	}
	return results
}

// Sectors returns the distinct sectors, sorted.
func (c *Catalog) Sectors() []string {
	seen := make(map[string]struct{})
	var sectors []string
	for _, s := range c.stocks {
		if _, ok := seen[s.Sector]; ok {
			continue
		}
		seen[s.Sector] = struct{}{}
		sectors = append(sectors, s.Sector)
	}
	sort.Strings(sectors)
	return sectors
}

// BySector returns the stocks of one sector in table order.
func (c *Catalog) BySector(sector string) []domain.Stock {
	var out []domain.Stock
	for _, s := range c.stocks {
		if s.Sector == sector {
			out = append(out, s)
		}
	}
	return out
}

// TopMovers returns the best and worst performers by reference change percent.
func (c *Catalog) TopMovers(limit int) (gainers, losers []domain.Stock) {
	sorted := c.All()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePercent > sorted[j].ChangePercent
	})
	if limit > len(sorted) {
		limit = len(sorted)
	}
	if limit <= 0 {
		return nil, nil
	}
	gainers = append(gainers, sorted[:limit]...)
	for i := len(sorted) - 1; i >= len(sorted)-limit; i-- {
		losers = append(losers, sorted[i])
	}
	return gainers, losers
}

// IndexQuote is a headline index value.
type IndexQuote struct {
	Symbol        string
	Value         float64
	ChangePercent float64
}

// MarketSummary returns S&P 500, Nasdaq and Dow proxies keyed by index name.
// Indices whose proxy ETF is missing from the catalog are omitted.
func (c *Catalog) MarketSummary() map[string]IndexQuote {
	proxies := map[string]string{"sp500": "SPY", "nasdaq": "QQQ", "dow": "DIA"}
	summary := make(map[string]IndexQuote, len(proxies))
	for name, symbol := range proxies {
		if s, ok := c.Lookup(symbol); ok {
			summary[name] = IndexQuote{Symbol: s.Symbol, Value: s.Price, ChangePercent: s.ChangePercent}
		}
	}
	return summary
}
