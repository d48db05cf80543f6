package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

// Forecaster is the part of weather.Service the scheduler needs.
type Forecaster interface {
	RequestForecast(ctx context.Context, hours int) (weather.ForecastResult, error)
}

// Scheduler periodically records a rain outlook.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	forecaster Forecaster
	store      weather.Store
	spec       string
	horizon    int
	timeout    time.Duration
	now        func() time.Time
}

// New creates a new Scheduler. spec is a standard cron expression.
func New(spec string, horizon int, forecaster Forecaster, store weather.Store) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		forecaster: forecaster,
		store:      store,
		spec:       spec,
		horizon:    horizon,
		timeout:    time.Minute,
		now:        time.Now,
	}
}

// Start schedules the outlook job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		slog.Info("scheduler: no outlook schedule configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Cron(s.spec).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	slog.Info("scheduler: outlook job scheduled", "schedule", s.spec, "horizonHours", s.horizon)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// runOnce records one outlook. On failure the last good outlook stays the latest.
func (s *Scheduler) runOnce(ctx context.Context) {
	slog.Debug("scheduler: running outlook job", "horizonHours", s.horizon)

	result, err := s.forecaster.RequestForecast(ctx, s.horizon)
	if err != nil {
		slog.Warn("scheduler: outlook skipped; keeping last good outlook", "error", err)
		return
	}

	outlook := weather.NewOutlook(result, s.now())
	if err := s.store.SaveOutlook(ctx, outlook); err != nil {
		slog.Error("scheduler: save outlook failed", "id", outlook.ID, "error", err)
		return
	}

	slog.Info("scheduler: outlook recorded",
		"id", outlook.ID,
		"horizonHours", outlook.HorizonHours,
		"rainHours", outlook.RainHours,
	)
}
