package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lmittmann/tint"

	"brand-studio-api/internal/assets"
	"brand-studio-api/internal/auth"
	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/config"
	"brand-studio-api/internal/httpclient"
	"brand-studio-api/internal/media"
	"brand-studio-api/internal/notify"
	"brand-studio-api/internal/provider"
	"brand-studio-api/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	pollPolicy := provider.PollPolicy{
		Interval:    cfg.VideoPollInterval,
		MaxAttempts: cfg.VideoPollMaxAttempts,
	}

	gateway := provider.New(provider.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
		Poll:       pollPolicy,
	})

	mediaStore := media.NewStore()

	generator := campaign.NewGenerator(campaign.GeneratorOptions{
		Text:   gateway,
		Logger: logger,
	})

	var authClient *auth.Client
	if cfg.AuthBaseURL != "" {
		authClient = auth.New(auth.Options{
			BaseURL:    cfg.AuthBaseURL,
			APIKey:     cfg.AuthAPIKey,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		authClient.OnSessionChange(func(session *auth.Session) {
			if session == nil {
				logger.Info("session ended")
				return
			}
			logger.Info("session started", "user", session.User.Email)
		})
	}

	var notifier *notify.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = notify.New(notify.Options{
			Token:      cfg.TelegramToken,
			ChatID:     cfg.TelegramChatID,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			logger.Error("telegram notifier init failed", "err", err)
			os.Exit(1)
		}
	}

	proxyTargets := map[string]server.ProxyTarget{}
	if cfg.AnthropicAPIKey != "" {
		proxyTargets["anthropic"] = server.ProxyTarget{
			URL: "https://api.anthropic.com/v1/messages",
			Headers: map[string]string{
				"x-api-key":         cfg.AnthropicAPIKey,
				"anthropic-version": "2023-06-01",
			},
		}
	}

	// The video deadline follows the poll budget, with slack for the submit
	// and fetch legs. An unbounded poll policy gets an unbounded run.
	videoTimeout := pollPolicy.Budget()
	if videoTimeout > 0 {
		videoTimeout += 2 * time.Minute
	}

	srv := server.New(server.Options{
		Campaigns: generator,
		NewOrchestrator: func() *assets.Orchestrator {
			return assets.NewOrchestrator(assets.Options{
				Text:   gateway,
				Images: gateway,
				Videos: gateway,
				Media:  mediaStore,
				Logger: logger,
			})
		},
		Media:          mediaStore,
		Auth:           authClient,
		Notifier:       notifier,
		ProxyTargets:   proxyTargets,
		HTTPClient:     httpClient,
		Logger:         logger,
		MaxConcurrent:  cfg.MaxConcurrent,
		RequestTimeout: cfg.RequestTimeout,
		VideoTimeout:   videoTimeout,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(requestLogging(logger))
	srv.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("studio api started", "addr", cfg.Addr)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Debug {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func requestLogging(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"dur_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
