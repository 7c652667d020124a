// ABOUTME: Tests for the time-series aligner: axis construction, overlap handling, filtering.
// ABOUTME: Includes a full worked example checking every output array position.
package align

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/signalflux/fluxwatch/model"
)

func price(date string, o, c, lo, hi, vol float64) model.PricePoint {
	return model.PricePoint{Date: date, Open: o, Close: c, Low: lo, High: hi, Volume: vol}
}

func forecast(date string, o, c, lo, hi float64) model.ForecastPoint {
	return model.ForecastPoint{Date: date, Open: o, Close: c, Low: lo, High: hi}
}

func TestAlignWorkedExample(t *testing.T) {
	history := []model.PricePoint{
		price("2024-02-01", 10, 11, 9, 12, 1000),
	}
	fc := []model.ForecastPoint{
		forecast("2024-02-02", 11, 12, 10, 13),
	}

	got := Align(history, fc, nil)

	wantDates := []string{"2024-02-01", "2024-02-02"}
	if len(got.Dates) != 2 || got.Dates[0] != wantDates[0] || got.Dates[1] != wantDates[1] {
		t.Fatalf("Dates = %v, want %v", got.Dates, wantDates)
	}
	if got.HistoryEnd != 0 {
		t.Errorf("HistoryEnd = %d, want 0", got.HistoryEnd)
	}

	// Position 0: history only.
	if got.HistoryCandles[0] != (Candle{10, 11, 9, 12}) {
		t.Errorf("HistoryCandles[0] = %v", got.HistoryCandles[0])
	}
	if !got.ForecastCandles[0].Empty() {
		t.Errorf("ForecastCandles[0] should be empty, got %v", got.ForecastCandles[0])
	}
	if got.Volumes[0] != 1000 {
		t.Errorf("Volumes[0] = %v, want 1000", got.Volumes[0])
	}

	// Position 1: forecast only.
	if !got.HistoryCandles[1].Empty() {
		t.Errorf("HistoryCandles[1] should be empty, got %v", got.HistoryCandles[1])
	}
	if got.ForecastCandles[1] != (Candle{11, 12, 10, 13}) {
		t.Errorf("ForecastCandles[1] = %v", got.ForecastCandles[1])
	}
	if !math.IsNaN(got.Volumes[1]) {
		t.Errorf("Volumes[1] = %v, want NaN", got.Volumes[1])
	}
}

func TestAlignAxisLength(t *testing.T) {
	history := []model.PricePoint{
		price("2024-01-01", 1, 1, 1, 1, 10),
		price("2024-01-02", 2, 2, 2, 2, 20),
		price("2024-01-03", 3, 3, 3, 3, 30),
	}
	fc := []model.ForecastPoint{
		forecast("2024-01-04", 4, 4, 4, 4),
		forecast("2024-01-05", 5, 5, 5, 5),
	}

	got := Align(history, fc, nil)

	if len(got.Dates) != 5 {
		t.Fatalf("axis length = %d, want 5", len(got.Dates))
	}
	if got.HistoryEnd != 2 {
		t.Errorf("HistoryEnd = %d, want 2", got.HistoryEnd)
	}
	for _, arr := range [][]Candle{got.HistoryCandles, got.ForecastCandles, got.ForecastBaseCandles} {
		if len(arr) != len(got.Dates) {
			t.Errorf("candle array length %d, want %d", len(arr), len(got.Dates))
		}
	}
	if len(got.Volumes) != len(got.Dates) {
		t.Errorf("volumes length %d, want %d", len(got.Volumes), len(got.Dates))
	}
}

func TestAlignHistoryPrefixPreserved(t *testing.T) {
	// Forecast dates sorting before history must still land after the
	// history prefix.
	history := []model.PricePoint{
		price("2024-06-01", 1, 1, 1, 1, 0),
		price("2024-06-02", 2, 2, 2, 2, 0),
	}
	fc := []model.ForecastPoint{
		forecast("2024-01-15", 9, 9, 9, 9),
	}

	got := Align(history, fc, nil)

	want := []string{"2024-06-01", "2024-06-02", "2024-01-15"}
	if len(got.Dates) != 3 {
		t.Fatalf("Dates = %v", got.Dates)
	}
	for i, d := range want {
		if got.Dates[i] != d {
			t.Errorf("Dates[%d] = %s, want %s", i, got.Dates[i], d)
		}
	}
	if got.HistoryEnd != 1 {
		t.Errorf("HistoryEnd = %d, want 1", got.HistoryEnd)
	}
}

func TestAlignOverlapDropped(t *testing.T) {
	history := []model.PricePoint{
		price("2024-02-01", 10, 11, 9, 12, 500),
	}
	fc := []model.ForecastPoint{
		forecast("2024-02-01", 99, 99, 99, 99), // same date as history
		forecast("2024-02-02", 11, 12, 10, 13),
	}

	got := Align(history, fc, nil)

	if len(got.Dates) != 2 {
		t.Fatalf("Dates = %v, want 2 entries", got.Dates)
	}
	// The overlapping forecast point contributes nothing; history wins.
	if got.HistoryCandles[0] != (Candle{10, 11, 9, 12}) {
		t.Errorf("HistoryCandles[0] = %v", got.HistoryCandles[0])
	}
	if !got.ForecastCandles[0].Empty() {
		t.Errorf("ForecastCandles[0] = %v, want empty", got.ForecastCandles[0])
	}
	if got.ForecastCandles[1] != (Candle{11, 12, 10, 13}) {
		t.Errorf("ForecastCandles[1] = %v", got.ForecastCandles[1])
	}
}

func TestAlignDualForecastsShareIndex(t *testing.T) {
	fc := []model.ForecastPoint{forecast("2024-03-01", 1, 2, 0, 3)}
	fcBase := []model.ForecastPoint{forecast("2024-03-01", 4, 5, 3, 6)}

	got := Align(nil, fc, fcBase)

	if len(got.Dates) != 1 {
		t.Fatalf("Dates = %v, want one shared entry", got.Dates)
	}
	if got.HistoryEnd != -1 {
		t.Errorf("HistoryEnd = %d, want -1", got.HistoryEnd)
	}
	if got.ForecastCandles[0] != (Candle{1, 2, 0, 3}) {
		t.Errorf("ForecastCandles[0] = %v", got.ForecastCandles[0])
	}
	if got.ForecastBaseCandles[0] != (Candle{4, 5, 3, 6}) {
		t.Errorf("ForecastBaseCandles[0] = %v", got.ForecastBaseCandles[0])
	}
	if !got.HistoryCandles[0].Empty() {
		t.Errorf("HistoryCandles[0] = %v, want empty", got.HistoryCandles[0])
	}
}

func TestAlignForecastDatesSorted(t *testing.T) {
	fc := []model.ForecastPoint{
		forecast("2024-03-05", 5, 5, 5, 5),
		forecast("2024-03-01", 1, 1, 1, 1),
		forecast("2024-03-03", 3, 3, 3, 3),
	}

	got := Align(nil, fc, nil)

	want := []string{"2024-03-01", "2024-03-03", "2024-03-05"}
	for i, d := range want {
		if got.Dates[i] != d {
			t.Errorf("Dates[%d] = %s, want %s", i, got.Dates[i], d)
		}
	}
}

func TestAlignFiltersInvalidPoints(t *testing.T) {
	history := []model.PricePoint{
		price("", 1, 1, 1, 1, 0),                              // missing date
		price("2024-04-01", math.NaN(), 1, 1, 1, 0),           // NaN open
		price("2024-04-02", 1, math.Inf(1), 1, 1, 0),          // infinite close
		price("2024-04-03", 2, 3, 1, 4, 50),                   // valid
	}
	fc := []model.ForecastPoint{
		forecast("", 1, 1, 1, 1),
		forecast("2024-04-04", 3, 4, 2, 5),
	}

	got := Align(history, fc, nil)

	if len(got.Dates) != 2 {
		t.Fatalf("Dates = %v, want 2 valid entries", got.Dates)
	}
	if got.Dates[0] != "2024-04-03" || got.Dates[1] != "2024-04-04" {
		t.Errorf("Dates = %v", got.Dates)
	}
	if got.HistoryEnd != 0 {
		t.Errorf("HistoryEnd = %d, want 0", got.HistoryEnd)
	}
}

func TestAlignDeterministic(t *testing.T) {
	history := []model.PricePoint{price("2024-05-01", 1, 2, 0, 3, 10)}
	fc := []model.ForecastPoint{
		forecast("2024-05-03", 3, 3, 3, 3),
		forecast("2024-05-02", 2, 2, 2, 2),
	}

	a := Align(history, fc, nil)
	b := Align(history, fc, nil)

	// NaN sentinels defeat direct equality; compare the JSON wire form.
	aj, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	bj, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(aj) != string(bj) {
		t.Errorf("same inputs produced different outputs:\n%s\n%s", aj, bj)
	}
}

func TestAlignAllEmpty(t *testing.T) {
	got := Align(nil, nil, nil)

	if !got.Empty() {
		t.Error("expected empty result")
	}
	if got.HistoryEnd != -1 {
		t.Errorf("HistoryEnd = %d, want -1", got.HistoryEnd)
	}

	// All-invalid input behaves the same as no input.
	got = Align([]model.PricePoint{price("", 1, 1, 1, 1, 0)}, nil, nil)
	if !got.Empty() || got.HistoryEnd != -1 {
		t.Errorf("all-invalid input: %+v", got)
	}
}
