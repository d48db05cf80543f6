package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-trend-forecast/internal/store"
	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

// MaxHorizonHours caps the horizon accepted over HTTP (one year).
const MaxHorizonHours = 8760

var validate = validator.New()

// Forecaster produces forecasts on demand; *weather.Service implements it.
type Forecaster interface {
	RequestForecast(ctx context.Context, hours int) (weather.ForecastResult, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, forecaster Forecaster, outlooks weather.Store, board *Board) {
	app.Get("/", dashboardHandler(forecaster, board))

	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q horizonQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := forecaster.RequestForecast(c.UserContext(), q.Hours)
		if err != nil {
			return forecastError(err)
		}

		return c.JSON(result)
	})

	v1.Get("/forecast/summary", func(c *fiber.Ctx) error {
		var q horizonQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := forecaster.RequestForecast(c.UserContext(), q.Hours)
		if err != nil {
			return forecastError(err)
		}

		c.Type("txt", "utf-8")
		return c.SendString(result.Summary())
	})

	v1.Get("/outlook/latest", func(c *fiber.Ctx) error {
		outlook, err := outlooks.GetLatest(c.UserContext())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no outlook recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read outlook")
		}

		return c.JSON(outlook)
	})

	v1.Get("/outlook/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := outlooks.GetRange(c.UserContext(), req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no outlooks for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read outlook history")
		}

		return c.JSON(fiber.Map{
			"from":     req.From,
			"to":       req.To,
			"outlooks": history,
		})
	})
}

// forecastError maps service errors onto HTTP errors.
func forecastError(err error) *fiber.Error {
	switch {
	case errors.Is(err, weather.ErrInvalidHorizon):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrForecastUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "forecast unavailable: channel returned no usable data")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute forecast")
	}
}

// horizonQuery holds the forecast horizon query parameter.
type horizonQuery struct {
	Hours int `validate:"required,min=1,max=8760"`
}

func (h *horizonQuery) bind(c *fiber.Ctx) error {
	raw := c.Query("hours")
	if raw == "" {
		return errors.New("hours query parameter is required")
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("hours must be an integer")
	}
	h.Hours = n

	return validate.Struct(h)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
