package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
)

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	s, ok := c.Lookup("aapl")
	require.True(t, ok)
	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, 178.72, s.Price)
	assert.Equal(t, "Technology", s.Sector)

	_, ok = c.Lookup("ZZZZ")
	assert.False(t, ok)
}

func TestCatalog_Search(t *testing.T) {
	c := Default()

	tests := []struct {
		name      string
		query     string
		wantFirst string
		wantLen   int
	}{
		{name: "empty query", query: "   ", wantLen: 0},
		{name: "symbol match", query: "nvda", wantFirst: "NVDA", wantLen: 1},
		{name: "name match", query: "coca", wantFirst: "KO", wantLen: 1},
		{name: "capped at ten", query: "a", wantFirst: "AAPL", wantLen: MaxSearchResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := c.Search(tt.query)
			assert.Len(t, results, tt.wantLen)
			if tt.wantFirst != "" {
				require.NotEmpty(t, results)
				assert.Equal(t, tt.wantFirst, results[0].Symbol)
			}
		})
	}
}

func TestCatalog_SearchMarksETFs(t *testing.T) {
	results := Default().Search("SPY")
	require.Len(t, results, 1)
	assert.Equal(t, "ETF", results[0].Type)
}

func TestCatalog_NewIgnoresDuplicates(t *testing.T) {
	c := New([]domain.Stock{
		{Symbol: "ABC", Name: "First", Price: 10},
		{Symbol: "abc", Name: "Second", Price: 20},
	})
	assert.Len(t, c.All(), 1)
	s, ok := c.Lookup("ABC")
	require.True(t, ok)
	assert.Equal(t, "First", s.Name)
}

func TestCatalog_SectorsAndMovers(t *testing.T) {
	c := Default()

	sectors := c.Sectors()
	assert.Contains(t, sectors, "ETF")
	assert.IsIncreasing(t, sectors)
	assert.Len(t, c.BySector("Energy"), 3)

	gainers, losers := c.TopMovers(3)
	require.Len(t, gainers, 3)
	require.Len(t, losers, 3)
	assert.Equal(t, "AMD", gainers[0].Symbol)
	assert.Equal(t, "TSLA", losers[0].Symbol)

	summary := c.MarketSummary()
	assert.Equal(t, "SPY", summary["sp500"].Symbol)
	assert.Equal(t, "QQQ", summary["nasdaq"].Symbol)
}
