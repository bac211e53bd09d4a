package indicators

import (
	"context"
	"fmt"

	"stockSim/internal/domain"
)

// DefaultRSIPeriod is the number of close-to-close changes averaged by RSI.
const DefaultRSIPeriod = 14

// RSI implements the Relative Strength Index over simple averages of the
// last Period changes.
type RSI struct {
	BaseIndicator
}

// NewRSI creates a new RSI indicator instance
func NewRSI(period int) *RSI {
	return &RSI{
		BaseIndicator: BaseIndicator{Config: IndicatorConfig{Period: period}},
	}
}

// Name returns the name of the indicator
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredDataPoints is one more than the period, since RSI works on changes.
func (r *RSI) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Calculate computes the RSI of the most recent Period changes.
// A flat change counts towards gains.
func (r *RSI) Calculate(ctx context.Context, points []domain.PricePoint) (float64, error) {
	if r.Config.Period <= 0 {
		return 0, fmt.Errorf("invalid RSI period %d", r.Config.Period)
	}
	if len(points) < r.RequiredDataPoints() {
		return 0, fmt.Errorf("%w (%d) to calculate RSI for period %d", ErrInsufficientData, len(points), r.Config.Period)
	}

	var gains, losses float64
	for i := len(points) - r.Config.Period; i < len(points); i++ {
		change := points[i].Close - points[i-1].Close
		if change >= 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(r.Config.Period)
	avgLoss := losses / float64(r.Config.Period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}
