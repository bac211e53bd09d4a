package analytics

import (
	"math"
	"time"

	"stockSim/internal/domain"
)

// TradingDaysPerYear annualises the daily Sharpe ratio.
const TradingDaysPerYear = 252

// ComputeMetrics calculates the summary metrics of a backtest from its daily
// portfolio and benchmark values and its chronological trade list.
func ComputeMetrics(initialCash float64, values, benchmark []float64, trades []domain.Trade) domain.BacktestMetrics {
	return domain.BacktestMetrics{
		TotalReturn:     TotalReturn(initialCash, values),
		BenchmarkReturn: TotalReturn(initialCash, benchmark),
		SharpeRatio:     SharpeRatio(values),
		MaxDrawdown:     MaxDrawdown(values),
		WinRate:         WinRate(trades),
		TotalTrades:     len(trades),
	}
}

// TotalReturn is the percent change from initial to the last value.
func TotalReturn(initial float64, values []float64) float64 {
	if initial == 0 || len(values) == 0 {
		return 0
	}
	return (values[len(values)-1] - initial) / initial * 100
}

// DailyReturns converts a value series into day-over-day fractional returns.
// Days following a zero value are skipped.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

// SharpeRatio is the annualised mean daily return over its population
// standard deviation, with a zero risk-free rate.
func SharpeRatio(values []float64) float64 {
	returns := DailyReturns(values)
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(TradingDaysPerYear)
}

// MaxDrawdown is the largest percent decline from a running peak.
func MaxDrawdown(values []float64) float64 {
	var peak, maxDD float64
	for i, v := range values {
		if i == 0 || v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// WinRate is the percent of SELL trades priced above the most recent prior
// BUY of the same symbol. Trades must be chronological. Without sells it is 0.
func WinRate(trades []domain.Trade) float64 {
	lastBuy := make(map[string]domain.Trade)
	var sells, wins int
	for _, t := range trades {
		switch t.Type {
		case domain.Buy:
			lastBuy[t.Symbol] = t
		case domain.Sell:
			sells++
			if buy, ok := lastBuy[t.Symbol]; ok && t.Price.GreaterThan(buy.Price) {
				wins++
			}
		}
	}
	if sells == 0 {
		return 0
	}
	return float64(wins) / float64(sells) * 100
}

// AnalyzePerformance derives the equity curve, drawdown periods and monthly
// returns of a daily value series. dates and values must be parallel.
func AnalyzePerformance(dates []time.Time, values []float64) domain.BacktestAnalysis {
	analysis := domain.BacktestAnalysis{
		Drawdowns:      make([]domain.Drawdown, 0),
		MonthlyReturns: make([]domain.MonthlyReturn, 0),
		EquityCurve:    make([]domain.EquityPoint, 0, len(values)),
	}

	n := len(values)
	if len(dates) < n {
		n = len(dates)
	}
	if n == 0 {
		return analysis
	}

	var peak float64
	var current *domain.Drawdown
	var troughValue float64

	for i := 0; i < n; i++ {
		v := values[i]
		if i == 0 || v >= peak {
			if current != nil {
				current.EndDate = dates[i]
				current.Recovered = true
				analysis.Drawdowns = append(analysis.Drawdowns, *current)
				current = nil
			}
			peak = v
		} else if peak > 0 {
			if current == nil {
				current = &domain.Drawdown{
					StartDate:  dates[i],
					PeakValue:  peak,
					TroughDate: dates[i],
				}
				troughValue = v
			}
			if v <= troughValue {
				troughValue = v
				current.TroughDate = dates[i]
				current.Depth = (peak - v) / peak * 100
			}
		}

		var dd float64
		if peak > 0 {
			dd = (peak - v) / peak * 100
		}
		analysis.EquityCurve = append(analysis.EquityCurve, domain.EquityPoint{
			Date:     dates[i],
			Value:    v,
			Drawdown: dd,
		})
	}

	// Close any open drawdown
	if current != nil {
		analysis.Drawdowns = append(analysis.Drawdowns, *current)
	}

	analysis.MonthlyReturns = monthlyReturns(dates[:n], values[:n])
	return analysis
}

// monthlyReturns measures each calendar month from the previous month's
// last value (or the first value for the first month) to its own last value.
func monthlyReturns(dates []time.Time, values []float64) []domain.MonthlyReturn {
	var returns []domain.MonthlyReturn
	base := values[0]
	for i := range values {
		last := i == len(values)-1 || !sameMonth(dates[i], dates[i+1])
		if !last {
			continue
		}
		month := time.Date(dates[i].Year(), dates[i].Month(), 1, 0, 0, 0, 0, dates[i].Location())
		var r float64
		if base != 0 {
			r = (values[i] - base) / base * 100
		}
		returns = append(returns, domain.MonthlyReturn{Month: month, Return: r})
		base = values[i]
	}
	return returns
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
