package domain

import "time"

// BacktestMetrics summarises a completed backtest. Percentages are in
// percent units (12.5 means 12.5%).
type BacktestMetrics struct {
	TotalReturn     float64
	BenchmarkReturn float64
	SharpeRatio     float64
	MaxDrawdown     float64
	WinRate         float64
	TotalTrades     int
}

// Drawdown represents a peak-to-recovery drawdown period.
type Drawdown struct {
	StartDate  time.Time
	EndDate    time.Time // Zero while still under water at the end of the run
	PeakValue  float64
	TroughDate time.Time
	Depth      float64 // Percent below peak at the trough
	Recovered  bool
}

// MonthlyReturn is the percent change of portfolio value over a calendar month.
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}

// BacktestAnalysis holds the extended analytics of a run.
type BacktestAnalysis struct {
	Drawdowns      []Drawdown
	MonthlyReturns []MonthlyReturn
	EquityCurve    []EquityPoint
}

// EquityPoint represents a point on the equity curve.
type EquityPoint struct {
	Date     time.Time
	Value    float64
	Drawdown float64 // Percent below running peak
}

// BacktestResult is the immutable output of a completed backtest.
type BacktestResult struct {
	ID                 string
	Dates              []time.Time
	PortfolioValues    []float64
	BenchmarkValues    []float64
	Trades             []Trade // Chronological
	Metrics            BacktestMetrics
	Analysis           BacktestAnalysis
	IgnoredSellSignals int // Strategy SELL actions that fired but were not executed
	CompletedAt        time.Time
}
