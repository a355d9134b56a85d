package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperforge/paperforge/internal/ai"
	"github.com/paperforge/paperforge/internal/embedding"
	"github.com/paperforge/paperforge/internal/generator"
	"github.com/paperforge/paperforge/internal/pastpapers"
	"github.com/paperforge/paperforge/internal/platform/cache"
	"github.com/paperforge/paperforge/internal/platform/config"
	"github.com/paperforge/paperforge/internal/platform/database"
	"github.com/paperforge/paperforge/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		slog.Error("invalid generation profile", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	application, cleanup, err := buildApp(ctx, cfg, profile)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      application.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation requests are slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
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
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildApp wires the pipeline from config: the Groq service behind the
// retry policy, the optional Ollama embedder (Redis-cached when a cache is
// configured), the knowledge store (Postgres or memory) and any past
// papers on disk.
func buildApp(ctx context.Context, cfg *config.Config, profile config.Profile) (*app, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var groqOpts []ai.GroqOption
	if cfg.Groq.BaseURL != "" {
		groqOpts = append(groqOpts, ai.WithBaseURL(cfg.Groq.BaseURL))
	}
	if cfg.Groq.ParserModel != "" || cfg.Groq.GeneratorModel != "" {
		groqOpts = append(groqOpts, ai.WithModels(cfg.Groq.ParserModel, cfg.Groq.GeneratorModel))
	}
	service := ai.NewRetrying(ai.NewGroqProvider(cfg.Groq.APIKey, groqOpts...))

	orch := generator.NewOrchestrator(service)
	orch.MarksTable = profile.MarksTable

	a := &app{profile: profile, orch: orch}

	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting cache: %w", err)
		}
		cleanups = append(cleanups, func() { c.Close() })
		a.cache = c
	}

	if cfg.Embedding.Enabled {
		ollama := embedding.NewOllama(cfg.Embedding.URL, cfg.Embedding.Model)
		if a.cache != nil {
			a.embedder = embedding.NewCached(ollama, a.cache.Client, ollama.Model(), embedding.DefaultCacheTTL)
		} else {
			a.embedder = ollama
		}
	} else {
		slog.Warn("embeddings disabled, novelty filtering will pass all questions through")
	}

	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting database: %w", err)
		}
		cleanups = append(cleanups, db.Close)
		a.db = db

		pg := store.NewPostgres(db.Pool)
		if err := pg.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		a.knowledge = pg
	} else {
		a.knowledge = store.NewMemory()
	}

	if cfg.PastPapers != "" {
		past, err := pastpapers.LoadDir(cfg.PastPapers)
		if err != nil {
			slog.Warn("loading past papers failed", "dir", cfg.PastPapers, "error", err)
		} else {
			slog.Info("past papers loaded", "count", len(past))
			a.past = past
		}
	}

	return a, cleanup, nil
}
