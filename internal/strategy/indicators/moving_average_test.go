package indicators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
)

func series(closes ...float64) []domain.PricePoint {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return points
}

func TestMovingAverage_Calculate(t *testing.T) {
	points := series(100, 102, 101, 103, 104)

	tests := []struct {
		name          string
		period        int
		points        []domain.PricePoint
		expectedValue float64
		expectError   bool
	}{
		{
			name:          "SMA with sufficient data",
			period:        3,
			points:        points,
			expectedValue: 102.666667, // (101 + 103 + 104) / 3
		},
		{
			name:          "SMA over whole series",
			period:        5,
			points:        points,
			expectedValue: 102,
		},
		{
			name:        "Insufficient data",
			period:      6,
			points:      points,
			expectError: true,
		},
		{
			name:        "Invalid period",
			period:      0,
			points:      points,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma := NewMovingAverage(tt.period)
			value, err := ma.Calculate(context.Background(), tt.points)

			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedValue, value, 0.0001)
		})
	}
}

func TestMovingAverage_InsufficientDataIsSentinel(t *testing.T) {
	_, err := NewMovingAverage(20).Calculate(context.Background(), series(1, 2, 3))
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, "SMA_20", NewMovingAverage(20).Name())
	assert.Equal(t, 20, NewMovingAverage(20).RequiredDataPoints())
}

func TestPriceChangePercent(t *testing.T) {
	ind := NewPriceChangePercent()

	value, err := ind.Calculate(context.Background(), series(100, 94))
	require.NoError(t, err)
	assert.InDelta(t, -6.0, value, 1e-9)

	value, err = ind.Calculate(context.Background(), series(0, 5))
	require.NoError(t, err)
	assert.Zero(t, value)

	_, err = ind.Calculate(context.Background(), series(100))
	assert.ErrorIs(t, err, ErrInsufficientData)
}
