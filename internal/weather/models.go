package weather

import (
	"time"
)

// SeriesID identifies one measured quantity on the remote channel.
type SeriesID struct {
	Name  string `json:"name"`
	Field int    `json:"field"`
}

// Key returns a canonical string key for logging and error messages.
func (s SeriesID) Key() string {
	return s.Name
}

// RawRecord is one untyped entry as returned by a Source.
type RawRecord struct {
	Timestamp string
	Value     string
}

// Reading is a single parsed observation.
type Reading struct {
	Timestamp    time.Time `json:"timestamp"` // always UTC
	Value        float64   `json:"value"`
	ElapsedHours float64   `json:"elapsedHours"`
}

// Series is a cleaned, time-ordered observation history for one quantity.
// ElapsedHours of each reading is measured from the series' own first reading.
type Series struct {
	ID       SeriesID  `json:"id"`
	Readings []Reading `json:"readings"`
}

// Len returns the number of readings.
func (s Series) Len() int {
	return len(s.Readings)
}

// Last returns the chronologically last reading. It panics on an empty series,
// which LoadSeries never produces.
func (s Series) Last() Reading {
	return s.Readings[len(s.Readings)-1]
}

// TrendModel is a fitted line over elapsed hours -> value.
type TrendModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Samples   int     `json:"samples"`
}

// At evaluates the model at the given elapsed hours.
func (m TrendModel) At(elapsedHours float64) float64 {
	return m.Slope*elapsedHours + m.Intercept
}

// PredictedPoint is one extrapolated value.
type PredictedPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	ElapsedHours float64   `json:"elapsedHours"`
	Value        float64   `json:"value"`
}

// Prediction is ordered by timestamp ascending, one point per future hour.
type Prediction []PredictedPoint

// RainLabel is the categorical rain outlook for one predicted hour.
type RainLabel string

const (
	RainLikely     RainLabel = "rain likely"
	NoRainExpected RainLabel = "no rain expected"
)

// SeriesForecast bundles the observed series, its model and the projection.
type SeriesForecast struct {
	Series     Series     `json:"series"`
	Model      TrendModel `json:"model"`
	Prediction Prediction `json:"prediction"`
}

// ForecastResult is the complete outcome of one forecast request. Rain labels
// are aligned 1:1 with Temperature.Prediction.
type ForecastResult struct {
	HorizonHours int            `json:"horizonHours"`
	Temperature  SeriesForecast `json:"temperature"`
	Humidity     SeriesForecast `json:"humidity"`
	Rain         []RainLabel    `json:"rain"`
}
