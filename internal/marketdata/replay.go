package marketdata

import (
	"sort"
	"strings"
	"sync"
	"time"

	"stockSim/internal/domain"
)

// Replay serves previously recorded daily bars instead of generating them,
// so a backtest can be rerun against the exact same history.
type Replay struct {
	mu     sync.RWMutex
	series map[string][]domain.PricePoint
}

// NewReplay creates an empty replay source.
func NewReplay() *Replay {
	return &Replay{series: make(map[string][]domain.PricePoint)}
}

// Add stores the bars of symbol, replacing any earlier ones. Bars are
// sorted by date and weekend bars are dropped.
func (r *Replay) Add(symbol string, points []domain.PricePoint) {
	kept := make([]domain.PricePoint, 0, len(points))
	for _, p := range points {
		if !isWeekend(p.Date) {
			kept = append(kept, p)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })

	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[strings.ToUpper(strings.TrimSpace(symbol))] = kept
}

// Symbols lists the loaded symbols in sorted order.
func (r *Replay) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.series))
	for s := range r.series {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (r *Replay) points(symbol string) []domain.PricePoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.series[strings.ToUpper(strings.TrimSpace(symbol))]
}

// GenerateSeries returns the recorded bars covering days calendar days
// up to the last recorded one.
func (r *Replay) GenerateSeries(symbol string, days int) []domain.PricePoint {
	pts := r.points(symbol)
	if len(pts) == 0 {
		return nil
	}
	return r.GenerateSeriesEnding(symbol, pts[len(pts)-1].Date, days)
}

// GenerateSeriesEnding returns the recorded bars dated within the days
// calendar days before end (inclusive). Unknown symbols yield nil.
func (r *Replay) GenerateSeriesEnding(symbol string, end time.Time, days int) []domain.PricePoint {
	pts := r.points(symbol)
	if len(pts) == 0 || days < 0 {
		return nil
	}
	end = truncateDay(end)
	start := end.AddDate(0, 0, -days)

	var out []domain.PricePoint
	for _, p := range pts {
		d := truncateDay(p.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CurrentPrice returns the last recorded close, or 0 for unknown symbols.
func (r *Replay) CurrentPrice(symbol string) float64 {
	pts := r.points(symbol)
	if len(pts) == 0 {
		return 0
	}
	return pts[len(pts)-1].Close
}

// CurrentPrices returns the last recorded close of every known symbol.
func (r *Replay) CurrentPrices(symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if p := r.CurrentPrice(s); p > 0 {
			prices[strings.ToUpper(s)] = p
		}
	}
	return prices
}
