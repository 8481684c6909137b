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

	"gatsby-glass-visualizer/internal/catalog"
	"gatsby-glass-visualizer/internal/config"
	"gatsby-glass-visualizer/internal/gemini"
	"gatsby-glass-visualizer/internal/handlers"
	"gatsby-glass-visualizer/internal/httpclient"
	"gatsby-glass-visualizer/internal/prompt"
	"gatsby-glass-visualizer/internal/store"
	"gatsby-glass-visualizer/internal/wizard"
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

	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	engine := prompt.New(prompt.Options{
		Catalog:          catalog.ForPrompt(),
		Cache:            prompt.NewCache(),
		StrictValidation: cfg.StrictTemplateVars,
		Logger:           logger,
	})

	sessions := wizard.NewStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recordStore *store.Store
	if cfg.DatabaseURL != "" {
		recordStore, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database init failed", "err", err)
			os.Exit(1)
		}
		defer recordStore.Close()
	} else {
		logger.Warn("DATABASE_URL not set, persistence disabled")
	}

	handler := handlers.New(handlers.Options{
		Gemini:         gem,
		Store:          recordStore,
		Engine:         engine,
		Sessions:       sessions,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.RequestTimeout,
		MaxConcurrent:  cfg.MaxConcurrent,
	})

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           withLogging(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	go housekeeping(ctx, cfg, engine, sessions, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web started", "addr", cfg.WebAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

// housekeeping evicts stale prompt cache entries and idle sessions on an
// hourly tick.
func housekeeping(ctx context.Context, cfg config.Config, engine *prompt.Engine, sessions *wizard.Store, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cache := engine.Cache(); cache != nil {
				if cleared := cache.ClearOlderThan(cfg.PromptCacheMaxAge); cleared > 0 {
					logger.Info("prompt cache cleaned", "cleared", cleared)
				}
			}
			if pruned := sessions.PruneIdle(cfg.SessionMaxIdle); pruned > 0 {
				logger.Info("idle sessions pruned", "pruned", pruned)
			}
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}
