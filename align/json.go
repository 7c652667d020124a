// ABOUTME: JSON serialization for Aligned output, mapping NaN sentinels to null.
// ABOUTME: encoding/json rejects NaN, so the wire shape uses nullable values.
package align

import (
	"encoding/json"
	"math"
)

// alignedJSON is the wire shape of Aligned. NaN sentinel values become null so
// chart renderers see explicit gaps.
type alignedJSON struct {
	Dates               []string      `json:"dates"`
	HistoryCandles      [][]*float64  `json:"history_candles"`
	ForecastCandles     [][]*float64  `json:"forecast_candles"`
	ForecastBaseCandles [][]*float64  `json:"forecast_base_candles"`
	Volumes             []*float64    `json:"volumes"`
	HistoryEnd          int           `json:"history_end"`
}

// MarshalJSON serializes the aligned series with null in place of NaN.
func (a Aligned) MarshalJSON() ([]byte, error) {
	j := alignedJSON{
		Dates:               a.Dates,
		HistoryCandles:      candlesToNullable(a.HistoryCandles),
		ForecastCandles:     candlesToNullable(a.ForecastCandles),
		ForecastBaseCandles: candlesToNullable(a.ForecastBaseCandles),
		Volumes:             floatsToNullable(a.Volumes),
		HistoryEnd:          a.HistoryEnd,
	}
	if j.Dates == nil {
		j.Dates = []string{}
	}
	return json.Marshal(j)
}

func candlesToNullable(candles []Candle) [][]*float64 {
	out := make([][]*float64, len(candles))
	for i, c := range candles {
		tuple := make([]*float64, len(c))
		for k, v := range c {
			if !math.IsNaN(v) {
				val := v
				tuple[k] = &val
			}
		}
		out[i] = tuple
	}
	return out
}

func floatsToNullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			val := v
			out[i] = &val
		}
	}
	return out
}
