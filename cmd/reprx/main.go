package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/reprx/internal/coach"
	"github.com/claude/reprx/internal/config"
	"github.com/claude/reprx/internal/exercisedb"
	"github.com/claude/reprx/internal/ingest/alpha"
	"github.com/claude/reprx/internal/mcp"
	"github.com/claude/reprx/internal/media"
	"github.com/claude/reprx/internal/metrics"
	"github.com/claude/reprx/internal/server"
	"github.com/claude/reprx/internal/session"
	"github.com/claude/reprx/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("reprx starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("reprx", "app", reg)

	groq := coach.NewClient(coach.Config{
		APIKey:       cfg.Groq.APIKey,
		BaseURL:      cfg.Groq.BaseURL,
		ProgramModel: cfg.Groq.ProgramModel,
		NoteModel:    cfg.Groq.NoteModel,
	}, m, log)
	if !groq.Enabled() {
		log.Warn("groq api key not set: onboarding and coach notes disabled")
	}

	exercises := exercisedb.NewService(db,
		exercisedb.NewClient(cfg.ExerciseDB.RapidAPIKey, cfg.ExerciseDB.BaseURL, cfg.ExerciseDB.WgerBaseURL),
		cfg.ExerciseDB.CacheMB, m, log)

	sessions := session.NewManager(session.Options{
		Store:        db,
		Finisher:     session.NewWrapup(db, groq, log),
		TickInterval: cfg.Session.TickInterval,
		Metrics:      m,
		Log:          log,
	})

	srv := server.New(server.Deps{
		Store:     db,
		Sessions:  sessions,
		Coach:     groq,
		Exercises: exercises,
		History:   alpha.NewProvider(db, log),
		Media:     media.NewResolver(),
		Auth:      server.NewAuth(cfg.Auth.PIN, cfg.Auth.PINHash),
		Metrics:   m,
		Gatherer:  reg,
		Log:       log,
	})
	srv.SetMCP(mcp.NewHTTPHandler(mcp.New(db, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := sessions.Shutdown(shutdownCtx); err != nil {
		log.Error("session shutdown error", "error", err)
	}
	log.Info("server stopped")
}
