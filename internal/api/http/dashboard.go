package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

//go:embed templates/*.html
var viewsFS embed.FS

var dashboardTmpl *template.Template

// loadTemplatesFromFS parses the dashboard templates found in dir of fsys.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded dashboard templates. Call during startup
// before serving requests.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Board holds what the dashboard currently displays. It only changes on a
// successful forecast, so a failed request leaves the previous charts intact.
type Board struct {
	mu      sync.RWMutex
	current *weather.ForecastResult
}

func NewBoard() *Board {
	return &Board{}
}

// Update replaces the displayed forecast.
func (b *Board) Update(r weather.ForecastResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &r
}

// Current returns the displayed forecast, if any.
func (b *Board) Current() (weather.ForecastResult, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return weather.ForecastResult{}, false
	}
	return *b.current, true
}

// HorizonOption is one of the dashboard's forecast actions.
type HorizonOption struct {
	Label string
	Class string
	Hours int
}

// DefaultHorizons are the actions offered on the dashboard.
var DefaultHorizons = []HorizonOption{
	{Label: "Predict Next Day", Class: "day", Hours: 24},
	{Label: "Predict Next Week", Class: "week", Hours: 24 * 7},
	{Label: "Predict Next Month", Class: "month", Hours: 24 * 30},
}

// DashboardData is the view model of the dashboard page.
type DashboardData struct {
	Horizons      []HorizonOption
	Notice        string
	HasForecast   bool
	Title         string
	Temperature   Chart
	Humidity      Chart
	SummaryHeader string
	SummaryLines  []string
}

func newDashboardData(board *Board, notice string) *DashboardData {
	data := &DashboardData{
		Horizons: DefaultHorizons,
		Notice:   notice,
	}

	result, ok := board.Current()
	if !ok {
		return data
	}

	data.HasForecast = true
	if len(result.Temperature.Prediction) > 0 {
		data.Title = "Weather Forecast - " + result.Temperature.Prediction[0].Timestamp.Format("January 2006")
	}
	data.Temperature = buildChart(temperatureStyle, result.Temperature)
	data.Humidity = buildChart(humidityStyle, result.Humidity)

	summary := strings.SplitN(result.Summary(), "\n", 2)
	data.SummaryHeader = summary[0]
	data.SummaryLines = result.SummaryLines()

	return data
}

// RenderDashboard executes the dashboard page into w.
func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call httpapi.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

func dashboardHandler(forecaster Forecaster, board *Board) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		notice := ""

		if c.Query("hours") != "" {
			var q horizonQuery
			if err := q.bind(c); err != nil {
				status = fiber.StatusBadRequest
				notice = fmt.Sprintf("Invalid horizon: choose between 1 and %d hours.", MaxHorizonHours)
			} else if result, err := forecaster.RequestForecast(c.UserContext(), q.Hours); err != nil {
				slog.Warn("dashboard forecast failed; keeping previous display", "hours", q.Hours, "error", err)
				status = forecastError(err).Code
				notice = "Forecast unavailable right now; the display was not updated."
			} else {
				board.Update(result)
			}
		}

		var buf bytes.Buffer
		if err := RenderDashboard(&buf, newDashboardData(board, notice)); err != nil {
			slog.Error("render dashboard", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}

		c.Type("html", "utf-8")
		return c.Status(status).Send(buf.Bytes())
	}
}
