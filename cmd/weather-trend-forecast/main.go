package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/i474232898/weather-trend-forecast/internal/api/http"
	"github.com/i474232898/weather-trend-forecast/internal/config"
	"github.com/i474232898/weather-trend-forecast/internal/logging"
	"github.com/i474232898/weather-trend-forecast/internal/scheduler"
	"github.com/i474232898/weather-trend-forecast/internal/store"
	"github.com/i474232898/weather-trend-forecast/internal/weather"
	"github.com/i474232898/weather-trend-forecast/internal/weather/providers"
)

const appName = "weather-trend-forecast"

// Overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg, version, appName))
	if envErr != nil {
		slog.Info("no .env file loaded", "error", envErr)
	}

	if err := run(cfg); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("shut down")
}

func run(cfg *config.AppConfig) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"port", cfg.Port,
		"channel", cfg.ThingSpeakChannelID,
		"temperatureField", cfg.Temperature.Field,
		"humidityField", cfg.Humidity.Field,
		"storeDriver", cfg.StoreDriver,
		"outlookSchedule", cfg.OutlookSchedule,
	)

	// Shared HTTP client for outbound channel calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source := providers.NewThingSpeakProvider(httpClient, providers.ThingSpeakConfig{
		BaseURL:    cfg.ThingSpeakBaseURL,
		ChannelID:  cfg.ThingSpeakChannelID,
		ReadAPIKey: cfg.ThingSpeakReadAPIKey,
		Results:    cfg.ThingSpeakResults,
		MaxRetries: cfg.ThingSpeakMaxRetries,
	})

	service := weather.NewService(source, cfg.Temperature, cfg.Humidity, cfg.ForecastTimeout)

	outlooks, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Scheduler that periodically records a rain outlook.
	sched := scheduler.New(cfg.OutlookSchedule, cfg.OutlookHorizon, service, outlooks)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	if err := httpapi.LoadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.ForecastTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service, outlooks, httpapi.NewBoard())

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	return app.ShutdownWithContext(shutdownCtx)
}

func openStore(cfg *config.AppConfig) (weather.Store, func(), error) {
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.SQLitePath, cfg.StoreMaxHistory, cfg.StoreMaxAge)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("sqlite close", "error", err)
			}
		}, nil
	default:
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() {}, nil
	}
}
