// ABOUTME: Pure time-series aligner merging observed history with up to two forecast series.
// ABOUTME: Produces a gap-free, date-indexed candle triple with an append-only date axis.
package align

import (
	"math"
	"sort"

	"github.com/signalflux/fluxwatch/model"
)

// Candle is one OHLC tuple in render order: open, close, low, high.
type Candle [4]float64

// emptyCandle is the sentinel for positions a series does not cover.
var emptyCandle = Candle{math.NaN(), math.NaN(), math.NaN(), math.NaN()}

// Empty reports whether the candle is the not-a-number sentinel.
func (c Candle) Empty() bool {
	return math.IsNaN(c[0]) && math.IsNaN(c[1]) && math.IsNaN(c[2]) && math.IsNaN(c[3])
}

// Aligned is the render-ready output: three parallel candle arrays and a
// volume array, all of length len(Dates). HistoryEnd is the index of the last
// observed candle (-1 when history is empty), marking where the visual divider
// between history and forecast belongs.
type Aligned struct {
	Dates               []string
	HistoryCandles      []Candle
	ForecastCandles     []Candle
	ForecastBaseCandles []Candle
	Volumes             []float64
	HistoryEnd          int
}

// Empty reports whether there is nothing to render. Charts with zero valid
// points render as absent rather than erroring.
func (a Aligned) Empty() bool {
	return len(a.Dates) == 0
}

// Align merges one observed price history with up to two independently dated
// forecast series. History arrives pre-sorted with unique dates; forecast
// arrays may be unsorted and may contain dates already present in history.
//
// The date axis is append-only with respect to history: history dates keep
// their original order as the prefix, and forecast-only dates are appended in
// ascending order even when they sort before history dates. A forecast point
// whose date already exists in history contributes nothing; only genuinely new
// dates receive forecast candles.
func Align(history []model.PricePoint, forecast, forecastBase []model.ForecastPoint) Aligned {
	hist := validPrices(history)
	fc := validForecasts(forecast)
	fcBase := validForecasts(forecastBase)

	if len(hist) == 0 && len(fc) == 0 && len(fcBase) == 0 {
		return Aligned{HistoryEnd: -1}
	}

	historyDates := make(map[string]bool, len(hist))
	dates := make([]string, 0, len(hist))
	for _, p := range hist {
		historyDates[p.Date] = true
		dates = append(dates, p.Date)
	}

	// Forecast-only dates: union of both series minus the history date set.
	newDateSet := make(map[string]bool)
	for _, p := range fc {
		if !historyDates[p.Date] {
			newDateSet[p.Date] = true
		}
	}
	for _, p := range fcBase {
		if !historyDates[p.Date] {
			newDateSet[p.Date] = true
		}
	}
	newDates := make([]string, 0, len(newDateSet))
	for d := range newDateSet {
		newDates = append(newDates, d)
	}
	sort.Strings(newDates)
	dates = append(dates, newDates...)

	index := make(map[string]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	n := len(dates)
	historyCandles := make([]Candle, n)
	forecastCandles := make([]Candle, n)
	forecastBaseCandles := make([]Candle, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		historyCandles[i] = emptyCandle
		forecastCandles[i] = emptyCandle
		forecastBaseCandles[i] = emptyCandle
		volumes[i] = math.NaN()
	}

	for i, p := range hist {
		historyCandles[i] = Candle{p.Open, p.Close, p.Low, p.High}
		volumes[i] = p.Volume
	}
	for _, p := range fc {
		if historyDates[p.Date] {
			continue
		}
		forecastCandles[index[p.Date]] = Candle{p.Open, p.Close, p.Low, p.High}
	}
	for _, p := range fcBase {
		if historyDates[p.Date] {
			continue
		}
		forecastBaseCandles[index[p.Date]] = Candle{p.Open, p.Close, p.Low, p.High}
	}

	return Aligned{
		Dates:               dates,
		HistoryCandles:      historyCandles,
		ForecastCandles:     forecastCandles,
		ForecastBaseCandles: forecastBaseCandles,
		Volumes:             volumes,
		HistoryEnd:          len(hist) - 1,
	}
}

// validPrices filters out points with missing dates or non-finite OHLC fields.
// A bad point is excluded rather than aborting the whole chart.
func validPrices(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if p.Date == "" || !finite(p.Open, p.Close, p.Low, p.High) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func validForecasts(points []model.ForecastPoint) []model.ForecastPoint {
	out := make([]model.ForecastPoint, 0, len(points))
	for _, p := range points {
		if p.Date == "" || !finite(p.Open, p.Close, p.Low, p.High) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
