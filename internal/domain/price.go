package domain

import "time"

// PricePoint represents a single daily OHLCV bar.
type PricePoint struct {
	Date   time.Time // Trading day (weekdays only), truncated to midnight
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// ValuePoint is a dated portfolio value.
type ValuePoint struct {
	Date  time.Time
	Value float64
}

// Closes extracts the closing prices of a series, oldest first.
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
