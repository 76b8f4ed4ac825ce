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

	"github.com/scrapedeck/scrapedeck/api"
	"github.com/scrapedeck/scrapedeck/cache"
	"github.com/scrapedeck/scrapedeck/config"
	"github.com/scrapedeck/scrapedeck/engine"
	"github.com/scrapedeck/scrapedeck/preview"
	"github.com/scrapedeck/scrapedeck/scraper"
	"github.com/scrapedeck/scrapedeck/session"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("scrapedeck starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// ── 3. Browser manager (lazy: Chrome launches on first use) ─────
	mgr := engine.NewManager(cfg.Browser, cfg.Fetch)
	defer mgr.Close()

	// ── 4. Fetch engines, scraper and previewer ─────────────────────
	registry := engine.NewRegistry(
		engine.NewHTTPEngine(),
		engine.NewDynamicEngine(mgr),
		engine.NewStealthEngine(mgr),
	)
	sc := scraper.New(registry, cfg.Fetch)
	pv := preview.New(registry, cfg.Fetch)

	// ── 5. Session store and result cache ───────────────────────────
	store := session.NewStore(cfg.Session.TTL)
	defer store.Stop()
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(sc, pv, mgr, store, cc, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// mgr.Close() runs via defer, draining page pools and killing Chrome.
	slog.Info("scrapedeck stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
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
