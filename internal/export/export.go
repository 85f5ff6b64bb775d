// Package export writes analysis data to Parquet files for use in external
// tooling: economic indicator series and walk-forward backtest equity curves.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"meridian/internal/api"
)

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// IndicatorRecord is the Parquet schema for economic indicator points.
type IndicatorRecord struct {
	Indicator string  `parquet:"indicator"`
	Date      string  `parquet:"date"`
	Value     float64 `parquet:"value"`
	Unit      string  `parquet:"unit"`
}

// EquityRecord is the Parquet schema for backtest equity curve points.
type EquityRecord struct {
	Date   string  `parquet:"date"`
	Equity float64 `parquet:"equity"`
}

// Exporter writes Parquet files under a root directory, one file per export,
// named by subject and date.
type Exporter struct {
	Dir string
}

// NewExporter creates an Exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// WriteIndicators writes an indicator series to
// <Dir>/economic/<indicator>-<YYYY-MM-DD>.parquet and returns the path.
func (e *Exporter) WriteIndicators(series *api.IndicatorSeries) (string, error) {
	if len(series.Points) == 0 {
		return "", fmt.Errorf("indicator series %q is empty", series.Indicator)
	}

	records := make([]IndicatorRecord, 0, len(series.Points))
	for _, p := range series.Points {
		records = append(records, IndicatorRecord{
			Indicator: series.Indicator,
			Date:      p.Date,
			Value:     p.Value,
			Unit:      series.Unit,
		})
	}

	path := filepath.Join(e.Dir, "economic",
		fmt.Sprintf("%s-%s.parquet", series.Indicator, time.Now().Format("2006-01-02")))
	if err := writeParquetFile(path, records); err != nil {
		return "", fmt.Errorf("writing indicator export: %w", err)
	}
	return path, nil
}

// WriteEquityCurve writes a backtest equity curve to
// <Dir>/backtests/<name>-<YYYY-MM-DD>.parquet and returns the path.
func (e *Exporter) WriteEquityCurve(name string, result *api.WalkForwardResult) (string, error) {
	if len(result.EquityCurve) == 0 {
		return "", fmt.Errorf("backtest %q has no equity curve", name)
	}

	records := make([]EquityRecord, 0, len(result.EquityCurve))
	for _, p := range result.EquityCurve {
		records = append(records, EquityRecord{Date: p.Date, Equity: p.Equity})
	}

	path := filepath.Join(e.Dir, "backtests",
		fmt.Sprintf("%s-%s.parquet", name, time.Now().Format("2006-01-02")))
	if err := writeParquetFile(path, records); err != nil {
		return "", fmt.Errorf("writing equity export: %w", err)
	}
	return path, nil
}

// ReadIndicators reads back an indicator export (used by tests and the CLI's
// show command).
func ReadIndicators(path string) ([]IndicatorRecord, error) {
	return parquet.ReadFile[IndicatorRecord](path)
}

// ReadEquityCurve reads back an equity curve export.
func ReadEquityCurve(path string) ([]EquityRecord, error) {
	return parquet.ReadFile[EquityRecord](path)
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
