package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
	"stockSim/internal/ports"
)

var _ ports.MarketData = (*Replay)(nil)
var _ ports.MarketData = (*Generator)(nil)

func bar(day int, close float64) domain.PricePoint {
	return domain.PricePoint{
		Date:  time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		Open:  close,
		High:  close,
		Low:   close,
		Close: close,
	}
}

func TestReplay(t *testing.T) {
	r := NewReplay()
	// March 2024: 9th and 10th are a weekend.
	r.Add("aapl", []domain.PricePoint{bar(12, 103), bar(8, 101), bar(11, 102), bar(9, 999), bar(13, 104)})

	assert.Equal(t, []string{"AAPL"}, r.Symbols())
	assert.Equal(t, 104.0, r.CurrentPrice("AAPL"))
	assert.Zero(t, r.CurrentPrice("MSFT"))
	assert.Equal(t, map[string]float64{"AAPL": 104}, r.CurrentPrices([]string{"aapl", "msft"}))

	all := r.GenerateSeries("AAPL", 30)
	require.Len(t, all, 4)
	assert.Equal(t, []float64{101, 102, 103, 104}, domain.Closes(all))

	window := r.GenerateSeriesEnding("AAPL", time.Date(2024, time.March, 12, 18, 0, 0, 0, time.UTC), 1)
	assert.Equal(t, []float64{102, 103}, domain.Closes(window))

	assert.Nil(t, r.GenerateSeries("MSFT", 30))
	assert.Nil(t, r.GenerateSeriesEnding("AAPL", time.Now(), -1))
}
