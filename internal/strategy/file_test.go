package strategy

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
)

const dipBuyerYAML = `
strategies:
  - id: dip-buyer
    name: Buy the dip
    description: Buy 5% of the portfolio after a sharp drop
    active: true
    conditions:
      - indicator: PRICE_CHANGE_PERCENT
        operator: LESS_THAN
        value: -5
    action:
      type: BUY
      amountType: PERCENT_PORTFOLIO
      amount: 5
  - name: Oversold SPY
    conditions:
      - indicator: RSI
        operator: LESS_THAN
        value: 30
        symbol: SPY
    action:
      type: BUY
      amountType: SHARES
      amount: 10
      symbol: SPY
`

func TestLoadStrategies(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := LoadStrategies(strings.NewReader(dipBuyerYAML), now)
	require.NoError(t, err)
	require.Len(t, got, 2)

	dip := got[0]
	assert.Equal(t, "dip-buyer", dip.ID)
	assert.True(t, dip.IsActive)
	assert.Equal(t, now, dip.CreatedAt)
	require.Len(t, dip.Conditions, 1)
	assert.NotEmpty(t, dip.Conditions[0].ID)
	assert.Equal(t, domain.IndicatorPriceChangePercent, dip.Conditions[0].Indicator)
	assert.Equal(t, -5.0, dip.Conditions[0].Value)
	assert.Equal(t, domain.AmountPercentPortfolio, dip.Action.AmountType)

	spy := got[1]
	assert.NotEmpty(t, spy.ID)
	assert.False(t, spy.IsActive)
	assert.Equal(t, "SPY", spy.Conditions[0].Symbol)
	assert.Equal(t, "SPY", spy.Action.Symbol)
}

func TestLoadStrategies_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown field", "strategies:\n  - name: x\n    colour: red\n"},
		{"unknown indicator", "strategies:\n  - name: x\n    conditions:\n      - indicator: MACD\n        operator: LESS_THAN\n        value: 1\n    action: {type: BUY, amountType: SHARES, amount: 1}\n"},
		{"bad action", "strategies:\n  - name: x\n    action: {type: HOLD, amountType: SHARES, amount: 1}\n"},
		{"not yaml", "strategies: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadStrategies(strings.NewReader(tt.input), time.Now())
			assert.Error(t, err)
		})
	}

	got, err := LoadStrategies(strings.NewReader(""), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteStrategies_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	original, err := LoadStrategies(strings.NewReader(dipBuyerYAML), now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteStrategies(&buf, original))

	again, err := LoadStrategies(&buf, now)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}
