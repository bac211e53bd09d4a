package indicators

import (
	"context"
	"fmt"

	"stockSim/internal/domain"
)

// MovingAverage is the simple moving average of the closing price.
type MovingAverage struct {
	BaseIndicator
}

// NewMovingAverage creates a new SMA over period trading days
func NewMovingAverage(period int) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: IndicatorConfig{Period: period}},
	}
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("SMA_%d", m.Config.Period)
}

// Calculate averages the last Period closes
func (m *MovingAverage) Calculate(ctx context.Context, points []domain.PricePoint) (float64, error) {
	if m.Config.Period <= 0 {
		return 0, fmt.Errorf("invalid SMA period %d", m.Config.Period)
	}
	if len(points) < m.Config.Period {
		return 0, fmt.Errorf("%w (%d) to calculate SMA for period %d", ErrInsufficientData, len(points), m.Config.Period)
	}

	total := 0.0
	for i := len(points) - m.Config.Period; i < len(points); i++ {
		total += points[i].Close
	}
	return total / float64(m.Config.Period), nil
}
