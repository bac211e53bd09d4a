// Package marketdata produces synthetic daily price series, live ticks and
// portfolio value trajectories from catalog reference prices.
package marketdata

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"stockSim/internal/domain"
	"stockSim/internal/ports"
)

const (
	techVolatility    = 0.025
	defaultVolatility = 0.015
	meanReversion     = 0.001
	tickJitter        = 0.005
	trajectoryNoise   = 0.01
	minPrice          = 1.0
)

// Generator is safe for concurrent use; calls share one random source.
type Generator struct {
	catalog ports.Catalog
	clock   func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed pins the random source to a fixed seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a random source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rnd = r
		}
	}
}

// WithClock overrides the notion of "today".
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// New creates a generator over catalog. Without options it draws from an
// entropy-seeded source and the wall clock.
func New(catalog ports.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// Today returns the current calendar day at midnight.
func (g *Generator) Today() time.Time {
	return truncateDay(g.clock())
}

// GenerateSeries returns daily bars covering the last days calendar days, ending today.
func (g *Generator) GenerateSeries(symbol string, days int) []domain.PricePoint {
	return g.GenerateSeriesEnding(symbol, g.clock(), days)
}

// GenerateSeriesEnding returns daily bars covering the days calendar days
// before end (inclusive), oldest first and with weekends skipped.
// Unknown symbols and negative day counts yield nil.
func (g *Generator) GenerateSeriesEnding(symbol string, end time.Time, days int) []domain.PricePoint {
	stock, ok := g.catalog.Lookup(symbol)
	if !ok || days < 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	base := stock.Price
	vol := volatility(stock)
	cur := base * g.uniform(0.7, 1.0)
	end = truncateDay(end)

	points := make([]domain.PricePoint, 0, days*5/7+2)
	for i := days; i >= 0; i-- {
		date := end.AddDate(0, 0, -i)
		if isWeekend(date) {
			continue
		}

		drift := (base - cur) * meanReversion
		noise := g.uniform(-1, 1) * vol * cur
		cur = math.Max(cur+drift+noise, minPrice)

		open := cur
		close := cur + g.uniform(-0.5, 0.5)*vol*cur
		high := math.Max(open, close) + g.uniform(0, 0.5)*vol*cur
		low := math.Min(open, close) - g.uniform(0, 0.5)*vol*cur

		points = append(points, domain.PricePoint{
			Date:   date,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(close),
			Volume: int64(float64(stock.Volume) * g.uniform(0.5, 1.5)),
		})
		cur = close
	}
	return points
}

// CurrentPrice returns the reference price with a small jitter, or 0 for unknown symbols.
func (g *Generator) CurrentPrice(symbol string) float64 {
	stock, ok := g.catalog.Lookup(symbol)
	if !ok {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return round2(stock.Price * (1 + g.uniform(-tickJitter, tickJitter)))
}

// CurrentPrices ticks every known symbol. Keys are upper-cased; unknown symbols are omitted.
func (g *Generator) CurrentPrices(symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if p := g.CurrentPrice(s); p > 0 {
			prices[strings.ToUpper(s)] = p
		}
	}
	return prices
}

// PortfolioTrajectory returns days+1 daily values ending today that drift
// linearly from initial to current with noise. Values never fall below half
// of initial, and the last value is exactly current.
func (g *Generator) PortfolioTrajectory(initial, current float64, days int) []domain.ValuePoint {
	if days < 0 {
		days = 0
	}
	today := g.Today()

	g.mu.Lock()
	defer g.mu.Unlock()

	points := make([]domain.ValuePoint, days+1)
	for i := 0; i <= days; i++ {
		value := current
		if i < days {
			progress := float64(i) / float64(days)
			value = initial + (current-initial)*progress
			value += g.uniform(-0.5, 0.5) * initial * trajectoryNoise
			value = math.Max(value, initial*0.5)
			value = round2(value)
		}
		points[i] = domain.ValuePoint{
			Date:  today.AddDate(0, 0, i-days),
			Value: value,
		}
	}
	return points
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

func volatility(s domain.Stock) float64 {
	if s.Sector == "Technology" {
		return techVolatility
	}
	return defaultVolatility
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
