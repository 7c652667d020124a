// ABOUTME: Price chart series: observed OHLCV history plus up to two projected forecast series.
// ABOUTME: Invariant: Prices is ordered by ascending date with unique dates; forecasts may be sparse.
package model

// PricePoint is one observed OHLCV candle.
type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Volume float64 `json:"volume"`
}

// ForecastPoint is a projected candle. Volume is not guaranteed by the
// forecasting model and defaults to zero.
type ForecastPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Volume float64 `json:"volume,omitempty"`
}

// Prediction summarizes the forecast as a target range with model confidence.
type Prediction struct {
	TargetLow  float64 `json:"target_low"`
	TargetHigh float64 `json:"target_high"`
	Confidence float64 `json:"confidence"`
}

// ChartSeries is the full chart payload for one ticker: observed history,
// a tuned forecast, a baseline model forecast, and an optional prediction
// summary. Forecast dates need not overlap Prices dates, need not be
// contiguous, and the two forecast series may partially overlap each other.
type ChartSeries struct {
	Ticker          string          `json:"ticker"`
	Name            string          `json:"name"`
	Prices          []PricePoint    `json:"prices"`
	Forecast        []ForecastPoint `json:"forecast,omitempty"`
	ForecastBase    []ForecastPoint `json:"forecast_base,omitempty"`
	Prediction      *Prediction     `json:"prediction,omitempty"`
	PredictionLogic string          `json:"prediction_logic,omitempty"`
}
