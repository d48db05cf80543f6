package httpapi

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

func TestLoadTemplates_failure(t *testing.T) {
	prev := dashboardTmpl
	t.Cleanup(func() { dashboardTmpl = prev })

	require.Error(t, loadTemplatesFromFS(fstest.MapFS{}, "templates"))

	badFS := fstest.MapFS{"templates/dashboard.html": {Data: []byte("{{ .")}}
	require.Error(t, loadTemplatesFromFS(badFS, "templates"))
}

func TestRenderDashboard_notLoaded(t *testing.T) {
	prev := dashboardTmpl
	dashboardTmpl = nil
	t.Cleanup(func() { dashboardTmpl = prev })

	var buf bytes.Buffer
	err := RenderDashboard(&buf, &DashboardData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not loaded")
}

func TestDashboard_empty(t *testing.T) {
	app, _ := newTestApp(t, &stubForecaster{}, nil)

	resp, body := doGet(t, app, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Weather Forecast Dashboard")
	for _, h := range DefaultHorizons {
		assert.Contains(t, body, h.Label)
	}
	assert.NotContains(t, body, "<svg")
}

func TestDashboard_forecastThenFailureKeepsDisplay(t *testing.T) {
	f := &stubForecaster{}
	app, board := newTestApp(t, f, nil)

	resp, body := doGet(t, app, "/?hours=24")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, strings.Count(body, "<svg"))
	assert.Contains(t, body, "Weather Forecast - August 2025")
	assert.Contains(t, body, "Rain Prediction (Next 24 Hours):")
	assert.Contains(t, body, "01 Aug - rain likely")

	before, ok := board.Current()
	require.True(t, ok)

	f.err = weather.ErrForecastUnavailable
	resp, body = doGet(t, app, "/?hours=720")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Forecast unavailable")
	assert.Contains(t, body, "Rain Prediction (Next 24 Hours):")

	after, ok := board.Current()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestDashboard_invalidHorizon(t *testing.T) {
	f := &stubForecaster{}
	app, board := newTestApp(t, f, nil)

	resp, body := doGet(t, app, "/?hours=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Invalid horizon")
	assert.Zero(t, f.calls)

	_, ok := board.Current()
	assert.False(t, ok)
}

func TestBuildChart(t *testing.T) {
	res := cannedResult(3)

	ch := buildChart(temperatureStyle, res.Temperature)
	assert.Equal(t, "Temperature", ch.Title)
	assert.Equal(t, "°C", ch.Unit)

	actual := strings.Fields(ch.Actual)
	predicted := strings.Fields(ch.Predicted)
	require.Len(t, actual, 3)
	require.Len(t, predicted, 4)

	// Actual starts at the left edge and the prediction ends at the right edge.
	assert.True(t, strings.HasPrefix(actual[0], "48.0,"))
	assert.True(t, strings.HasPrefix(predicted[3], "508.0,"))
	// The prediction line joins the last observation.
	assert.Equal(t, actual[2], predicted[0])

	require.Len(t, ch.XTicks, chartTicks)
	require.Len(t, ch.YTicks, chartTicks)
	assert.Equal(t, "01 Aug", ch.XTicks[0].Label)
	assert.Equal(t, "25.0", ch.YTicks[0].Label)
	assert.Equal(t, "30.0", ch.YTicks[chartTicks-1].Label)
}

func TestBuildChart_flatSeries(t *testing.T) {
	res := cannedResult(1)
	for i := range res.Humidity.Series.Readings {
		res.Humidity.Series.Readings[i].Value = 50
	}
	res.Humidity.Prediction[0].Value = 50

	ch := buildChart(humidityStyle, res.Humidity)
	assert.NotContains(t, ch.Actual, "NaN")
	assert.Equal(t, "49.0", ch.YTicks[0].Label)
}
