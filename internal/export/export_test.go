package export

import (
	"testing"

	"meridian/internal/api"
)

func TestWriteAndReadIndicators(t *testing.T) {
	e := NewExporter(t.TempDir())

	series := &api.IndicatorSeries{
		Indicator: "cpi",
		Unit:      "index",
		Points: []api.IndicatorPoint{
			{Date: "2024-01-01", Value: 308.4},
			{Date: "2024-02-01", Value: 310.3},
		},
	}

	path, err := e.WriteIndicators(series)
	if err != nil {
		t.Fatalf("WriteIndicators returned error: %v", err)
	}

	records, err := ReadIndicators(path)
	if err != nil {
		t.Fatalf("ReadIndicators returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Indicator != "cpi" || records[0].Value != 308.4 {
		t.Errorf("records[0] = %+v, want cpi/308.4", records[0])
	}
}

func TestWriteIndicatorsRejectsEmptySeries(t *testing.T) {
	e := NewExporter(t.TempDir())
	if _, err := e.WriteIndicators(&api.IndicatorSeries{Indicator: "cpi"}); err == nil {
		t.Error("WriteIndicators should reject an empty series")
	}
}

func TestWriteAndReadEquityCurve(t *testing.T) {
	e := NewExporter(t.TempDir())

	result := &api.WalkForwardResult{
		TotalReturn: 0.23,
		EquityCurve: []api.EquityPoint{
			{Date: "2024-01-01", Equity: 100000},
			{Date: "2024-06-01", Equity: 112000},
			{Date: "2024-12-01", Equity: 123000},
		},
	}

	path, err := e.WriteEquityCurve("tech-basket", result)
	if err != nil {
		t.Fatalf("WriteEquityCurve returned error: %v", err)
	}

	records, err := ReadEquityCurve(path)
	if err != nil {
		t.Fatalf("ReadEquityCurve returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[2].Equity != 123000 {
		t.Errorf("records[2].Equity = %v, want 123000", records[2].Equity)
	}
}
