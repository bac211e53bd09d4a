package domain

import (
	"fmt"
	"strings"
	"time"
)

// IndicatorType is the closed set of values a condition can inspect.
type IndicatorType string

const (
	IndicatorPrice               IndicatorType = "PRICE"
	IndicatorPriceChangePercent  IndicatorType = "PRICE_CHANGE_PERCENT"
	IndicatorVolume              IndicatorType = "VOLUME"
	IndicatorSMA20               IndicatorType = "SMA_20"
	IndicatorSMA50               IndicatorType = "SMA_50"
	IndicatorSMA200              IndicatorType = "SMA_200"
	IndicatorRSI                 IndicatorType = "RSI"
	IndicatorPortfolioValue      IndicatorType = "PORTFOLIO_VALUE"
	IndicatorPositionGainPercent IndicatorType = "POSITION_GAIN_PERCENT"
)

// Indicators lists every supported indicator.
var Indicators = []IndicatorType{
	IndicatorPrice, IndicatorPriceChangePercent, IndicatorVolume,
	IndicatorSMA20, IndicatorSMA50, IndicatorSMA200,
	IndicatorRSI, IndicatorPortfolioValue, IndicatorPositionGainPercent,
}

// Valid reports whether the indicator is known.
func (i IndicatorType) Valid() bool {
	for _, known := range Indicators {
		if i == known {
			return true
		}
	}
	return false
}

// ConditionOperator compares an indicator value with a threshold.
type ConditionOperator string

const (
	OpGreaterThan        ConditionOperator = "GREATER_THAN"
	OpLessThan           ConditionOperator = "LESS_THAN"
	OpEquals             ConditionOperator = "EQUALS"
	OpGreaterThanOrEqual ConditionOperator = "GREATER_THAN_OR_EQUAL"
	OpLessThanOrEqual    ConditionOperator = "LESS_THAN_OR_EQUAL"
	OpCrossesAbove       ConditionOperator = "CROSSES_ABOVE"
	OpCrossesBelow       ConditionOperator = "CROSSES_BELOW"
)

// Operators lists every supported operator.
var Operators = []ConditionOperator{
	OpGreaterThan, OpLessThan, OpEquals,
	OpGreaterThanOrEqual, OpLessThanOrEqual,
	OpCrossesAbove, OpCrossesBelow,
}

// Valid reports whether the operator is known.
func (o ConditionOperator) Valid() bool {
	for _, known := range Operators {
		if o == known {
			return true
		}
	}
	return false
}

// NeedsPrevious reports whether the operator compares against yesterday's value.
func (o ConditionOperator) NeedsPrevious() bool {
	return o == OpCrossesAbove || o == OpCrossesBelow
}

// AmountType defines how an action's amount converts into shares.
type AmountType string

const (
	AmountShares           AmountType = "SHARES"
	AmountPercentPortfolio AmountType = "PERCENT_PORTFOLIO"
	AmountDollar           AmountType = "DOLLAR_AMOUNT"
)

// Valid reports whether the amount type is known.
func (a AmountType) Valid() bool {
	return a == AmountShares || a == AmountPercentPortfolio || a == AmountDollar
}

// Condition is one rule of a strategy. Symbol, when set, pins the
// condition to that symbol's data instead of the evaluated symbol.
type Condition struct {
	ID        string            `json:"id" yaml:"id,omitempty"`
	Indicator IndicatorType     `json:"indicator" yaml:"indicator"`
	Operator  ConditionOperator `json:"operator" yaml:"operator"`
	Value     float64           `json:"value" yaml:"value"`
	Symbol    string            `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// Action is what a strategy does when all its conditions hold. Symbol,
// when set, targets that symbol instead of the triggering one.
type Action struct {
	ID         string     `json:"id" yaml:"id,omitempty"`
	Type       OrderSide  `json:"type" yaml:"type"`
	AmountType AmountType `json:"amountType" yaml:"amountType"`
	Amount     float64    `json:"amount" yaml:"amount"`
	Symbol     string     `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// Strategy is a named condition -> action rule set. Conditions are AND-combined.
type Strategy struct {
	ID          string      `json:"id" yaml:"id,omitempty"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description,omitempty"`
	IsActive    bool        `json:"isActive" yaml:"active"`
	Conditions  []Condition `json:"conditions" yaml:"conditions"`
	Action      Action      `json:"action" yaml:"action"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time   `json:"updatedAt" yaml:"-"`
}

// Validate checks that every enumerated field of the strategy is known.
func (s Strategy) Validate() error {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name must be set")
	}
	for i, c := range s.Conditions {
		if !c.Indicator.Valid() {
			errs = append(errs, fmt.Sprintf("condition %d: unknown indicator %q", i, c.Indicator))
		}
		if !c.Operator.Valid() {
			errs = append(errs, fmt.Sprintf("condition %d: unknown operator %q", i, c.Operator))
		}
	}
	if !s.Action.Type.Valid() {
		errs = append(errs, fmt.Sprintf("action: unknown type %q", s.Action.Type))
	}
	if !s.Action.AmountType.Valid() {
		errs = append(errs, fmt.Sprintf("action: unknown amount type %q", s.Action.AmountType))
	}
	if s.Action.Amount <= 0 {
		errs = append(errs, "action: amount must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid strategy: %s", strings.Join(errs, "; "))
	}
	return nil
}
