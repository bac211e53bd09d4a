package indicators

import (
	"context"
	"errors"

	"stockSim/internal/domain"
)

// ErrInsufficientData is returned when a series is shorter than an indicator needs.
var ErrInsufficientData = errors.New("not enough data")

// Indicator represents a technical indicator that can be calculated from price data
type Indicator interface {
	// Calculate computes the indicator value for a daily series, oldest first
	Calculate(ctx context.Context, points []domain.PricePoint) (float64, error)

	// RequiredDataPoints returns the minimum number of points needed for calculation
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of points needed for calculation
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}
