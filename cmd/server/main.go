package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/royal-radiance/storefront/pkg/storefront/api"
	"github.com/royal-radiance/storefront/pkg/storefront/config"
)

// appConfig holds process-level settings that are orthogonal to the
// storefront service configuration.
type appConfig struct {
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"text"` // text or json
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func main() {
	// Optional .env for local development; missing file is fine
	_ = godotenv.Load()

	var app appConfig
	if err := cleanenv.ReadEnv(&app); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read environment: %v\n", err)
		os.Exit(1)
	}
	setupLogger(app)

	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	svc, err := cfg.BuildService()
	if err != nil {
		slog.Error("Failed to build service", "error", err)
		os.Exit(1)
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.SeedSiteContent(seedCtx); err != nil {
		slog.Warn("Failed to seed site content", "error", err)
	}
	cancel()

	auth := api.NewAuth(cfg.SessionSecret, cfg.AdminPasswordHash)
	handler := api.NewHandler(svc, auth, cfg.MaxUploadBytes)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes(cfg, handler),
		ReadTimeout:  app.ReadTimeout,
		WriteTimeout: app.WriteTimeout,
	}

	go func() {
		slog.Info("Storefront server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.Storage.Type)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func routes(cfg *config.ServerConfig, handler *api.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if cfg.Environment == "development" {
		r.Use(corsAllowAll)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"healthy","environment":%q}`, cfg.Environment)
	})

	r.Mount("/api", handler.Routes())

	// Serve uploaded media directly when using local disk storage
	if cfg.Storage.Type == "fs" && cfg.Storage.URLPrefix != "" {
		prefix := "/" + strings.Trim(cfg.Storage.URLPrefix, "/")
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.BaseDir)))
		r.Get(prefix+"/*", fileServer.ServeHTTP)
	}

	return r
}

func corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setupLogger(app appConfig) {
	var level slog.Level
	switch strings.ToLower(app.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(app.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
