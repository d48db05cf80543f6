package httpapi

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

const (
	chartWidth   = 520
	chartHeight  = 300
	chartMarginL = 48
	chartMarginR = 12
	chartMarginT = 12
	chartMarginB = 32
	chartTicks   = 5
)

// Tick is one labelled axis position in SVG coordinates.
type Tick struct {
	Pos   float64
	Label string
}

// Chart is the view model of one actual-vs-predicted line chart.
type Chart struct {
	Title          string
	Unit           string
	ActualLabel    string
	PredictedLabel string
	ActualColor    string
	PredictedColor string
	Width          int
	Height         int
	Left, Right    float64
	Top, Bottom    float64
	Actual         string // SVG polyline points
	Predicted      string
	XTicks         []Tick
	YTicks         []Tick
}

// chartStyle names and colours one chart.
type chartStyle struct {
	Title, Unit                 string
	ActualLabel, PredictedLabel string
	ActualColor, PredictedColor string
}

var (
	temperatureStyle = chartStyle{
		Title:          "Temperature",
		Unit:           "°C",
		ActualLabel:    "Actual Temp",
		PredictedLabel: "Predicted Temp",
		ActualColor:    "blue",
		PredictedColor: "red",
	}
	humidityStyle = chartStyle{
		Title:          "Humidity",
		Unit:           "%",
		ActualLabel:    "Actual Humidity",
		PredictedLabel: "Predicted Humidity",
		ActualColor:    "green",
		PredictedColor: "orange",
	}
)

// buildChart lays out the observed series and its prediction on a shared,
// chronological x axis.
func buildChart(style chartStyle, sf weather.SeriesForecast) Chart {
	ch := Chart{
		Title:          style.Title,
		Unit:           style.Unit,
		ActualLabel:    style.ActualLabel,
		PredictedLabel: style.PredictedLabel,
		ActualColor:    style.ActualColor,
		PredictedColor: style.PredictedColor,
		Width:          chartWidth,
		Height:         chartHeight,
		Left:           chartMarginL,
		Right:          chartWidth - chartMarginR,
		Top:            chartMarginT,
		Bottom:         chartHeight - chartMarginB,
	}
	if sf.Series.Len() == 0 {
		return ch
	}

	tMin := sf.Series.Readings[0].Timestamp
	tMax := sf.Series.Last().Timestamp
	if n := len(sf.Prediction); n > 0 {
		tMax = sf.Prediction[n-1].Timestamp
	}

	vMin, vMax := math.Inf(1), math.Inf(-1)
	for _, r := range sf.Series.Readings {
		vMin, vMax = math.Min(vMin, r.Value), math.Max(vMax, r.Value)
	}
	for _, p := range sf.Prediction {
		vMin, vMax = math.Min(vMin, p.Value), math.Max(vMax, p.Value)
	}
	if vMin == vMax {
		vMin, vMax = vMin-1, vMax+1
	}

	span := tMax.Sub(tMin)
	x := func(t time.Time) float64 {
		if span <= 0 {
			return ch.Left
		}
		return ch.Left + float64(t.Sub(tMin))/float64(span)*(ch.Right-ch.Left)
	}
	y := func(v float64) float64 {
		return ch.Top + (vMax-v)/(vMax-vMin)*(ch.Bottom-ch.Top)
	}

	var actual strings.Builder
	for _, r := range sf.Series.Readings {
		fmt.Fprintf(&actual, "%.1f,%.1f ", x(r.Timestamp), y(r.Value))
	}
	ch.Actual = strings.TrimSpace(actual.String())

	// Predicted line starts at the last observation so the two lines join.
	last := sf.Series.Last()
	var predicted strings.Builder
	fmt.Fprintf(&predicted, "%.1f,%.1f", x(last.Timestamp), y(last.Value))
	for _, p := range sf.Prediction {
		fmt.Fprintf(&predicted, " %.1f,%.1f", x(p.Timestamp), y(p.Value))
	}
	ch.Predicted = predicted.String()

	for i := 0; i < chartTicks; i++ {
		frac := float64(i) / float64(chartTicks-1)
		t := tMin.Add(time.Duration(frac * float64(span)))
		ch.XTicks = append(ch.XTicks, Tick{Pos: x(t), Label: t.Format("02 Jan")})

		v := vMin + frac*(vMax-vMin)
		ch.YTicks = append(ch.YTicks, Tick{Pos: y(v), Label: fmt.Sprintf("%.1f", v)})
	}

	return ch
}
