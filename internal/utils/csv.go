package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"stockSim/internal/domain"
)

// WriteCSVFile creates filename and fills it with write.
func WriteCSVFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WritePriceSeriesCSV writes one row per daily bar of symbol.
func WritePriceSeriesCSV(w io.Writer, symbol string, points []domain.PricePoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "symbol", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{
			p.Date.Format(domain.DateLayout),
			symbol,
			formatFloat(p.Open),
			formatFloat(p.High),
			formatFloat(p.Low),
			formatFloat(p.Close),
			strconv.FormatInt(p.Volume, 10),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadPriceSeriesCSV parses a file written by WritePriceSeriesCSV. All
// rows must carry the same symbol; bars come back in file order.
func ReadPriceSeriesCSV(r io.Reader) (string, []domain.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("empty price series")
		}
		return "", nil, err
	}
	if strings.ToLower(header[0]) != "date" {
		return "", nil, fmt.Errorf("unexpected header %v", header)
	}

	var (
		symbol string
		points []domain.PricePoint
	)
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, err
		}

		recSymbol := strings.ToUpper(strings.TrimSpace(rec[1]))
		if symbol == "" {
			symbol = recSymbol
		} else if recSymbol != symbol {
			return "", nil, fmt.Errorf("line %d: symbol %s does not match %s", line, recSymbol, symbol)
		}

		p, err := parsePricePoint(rec)
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, p)
	}
	return symbol, points, nil
}

func parsePricePoint(rec []string) (domain.PricePoint, error) {
	date, err := time.Parse(domain.DateLayout, rec[0])
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("invalid date %q: %w", rec[0], err)
	}
	var prices [4]float64
	for i := range prices {
		v, err := strconv.ParseFloat(rec[2+i], 64)
		if err != nil {
			return domain.PricePoint{}, fmt.Errorf("invalid price %q: %w", rec[2+i], err)
		}
		prices[i] = v
	}
	volume, err := strconv.ParseInt(rec[6], 10, 64)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("invalid volume %q: %w", rec[6], err)
	}
	return domain.PricePoint{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

// WriteValuePointsCSV writes a dated value series such as a portfolio trajectory.
func WriteValuePointsCSV(w io.Writer, points []domain.ValuePoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "value"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{
			p.Date.Format(domain.DateLayout),
			strconv.FormatFloat(p.Value, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEquityCSV writes the portfolio and benchmark value of every backtest day.
func WriteEquityCSV(w io.Writer, result *domain.BacktestResult) error {
	if len(result.PortfolioValues) != len(result.Dates) || len(result.BenchmarkValues) != len(result.Dates) {
		return fmt.Errorf("result series lengths differ: %d dates, %d values, %d benchmark",
			len(result.Dates), len(result.PortfolioValues), len(result.BenchmarkValues))
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "portfolio_value", "benchmark_value"}); err != nil {
		return err
	}
	for i, d := range result.Dates {
		if err := writer.Write([]string{
			d.Format(domain.DateLayout),
			strconv.FormatFloat(result.PortfolioValues[i], 'f', 2, 64),
			strconv.FormatFloat(result.BenchmarkValues[i], 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTradesCSV writes the trade log in the order given.
func WriteTradesCSV(w io.Writer, trades []domain.Trade) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp", "symbol", "side", "shares", "price", "total", "notes"}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := writer.Write([]string{
			t.Timestamp.Format(domain.DateLayout),
			t.Symbol,
			string(t.Type),
			strconv.FormatInt(t.Shares, 10),
			t.Price.StringFixed(2),
			t.Total.StringFixed(2),
			t.Notes,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
