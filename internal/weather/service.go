package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Service orchestrates loading, fitting and projecting the temperature and
// humidity series of one channel.
type Service struct {
	source      Source
	temperature SeriesID
	humidity    SeriesID
	timeout     time.Duration
}

// NewService creates a new Service. A zero timeout leaves the caller's
// context as the only bound.
func NewService(source Source, temperature, humidity SeriesID, timeout time.Duration) *Service {
	return &Service{
		source:      source,
		temperature: temperature,
		humidity:    humidity,
		timeout:     timeout,
	}
}

// RequestForecast produces a forecast for the next hours. Either both series
// load and a full result is returned, or ErrForecastUnavailable is returned
// with no result.
func (s *Service) RequestForecast(ctx context.Context, hours int) (ForecastResult, error) {
	if hours < 1 {
		return ForecastResult{}, fmt.Errorf("%w: got %d", ErrInvalidHorizon, hours)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	slog.Debug("forecast requested", "hours", hours, "source", s.source.Name())

	var (
		wg              sync.WaitGroup
		temp, hum       SeriesForecast
		tempErr, humErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		temp, tempErr = s.forecastSeries(ctx, s.temperature, hours)
	}()
	go func() {
		defer wg.Done()
		hum, humErr = s.forecastSeries(ctx, s.humidity, hours)
	}()
	wg.Wait()

	if err := errors.Join(tempErr, humErr); err != nil {
		slog.Warn("forecast unavailable", "hours", hours, "error", err)
		return ForecastResult{}, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}

	return ForecastResult{
		HorizonHours: hours,
		Temperature:  temp,
		Humidity:     hum,
		Rain:         ClassifyPrediction(temp.Prediction),
	}, nil
}

func (s *Service) forecastSeries(ctx context.Context, id SeriesID, hours int) (SeriesForecast, error) {
	series, err := FetchSeries(ctx, s.source, id)
	if err != nil {
		return SeriesForecast{}, err
	}

	model := FitTrend(series)
	slog.Debug("trend fitted",
		"series", id.Key(),
		"samples", model.Samples,
		"slope", model.Slope,
		"intercept", model.Intercept,
	)

	return SeriesForecast{
		Series:     series,
		Model:      model,
		Prediction: ProjectSeries(model, series, hours),
	}, nil
}
