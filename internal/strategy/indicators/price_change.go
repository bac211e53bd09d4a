package indicators

import (
	"context"
	"fmt"

	"stockSim/internal/domain"
)

// PriceChangePercent is the day-over-day close change in percent.
type PriceChangePercent struct{}

// NewPriceChangePercent creates the indicator
func NewPriceChangePercent() *PriceChangePercent {
	return &PriceChangePercent{}
}

// Name returns the name of the indicator
func (p *PriceChangePercent) Name() string {
	return "PRICE_CHANGE_PERCENT"
}

// RequiredDataPoints needs today and the previous close
func (p *PriceChangePercent) RequiredDataPoints() int {
	return 2
}

// Calculate returns (close - prevClose) / prevClose * 100. A zero previous
// close yields 0.
func (p *PriceChangePercent) Calculate(ctx context.Context, points []domain.PricePoint) (float64, error) {
	if len(points) < 2 {
		return 0, fmt.Errorf("%w (%d) to calculate price change", ErrInsufficientData, len(points))
	}
	prev := points[len(points)-2].Close
	if prev == 0 {
		return 0, nil
	}
	return (points[len(points)-1].Close - prev) / prev * 100, nil
}
