package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/cardpress/internal/api"
	"github.com/dgallion1/cardpress/internal/articles"
	"github.com/dgallion1/cardpress/internal/config"
	"github.com/dgallion1/cardpress/internal/docsync"
	"github.com/dgallion1/cardpress/internal/parser"
	"github.com/dgallion1/cardpress/internal/pipeline"
	"github.com/dgallion1/cardpress/internal/storage"
	"github.com/dgallion1/cardpress/internal/upstream"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	syncer := docsync.New(log, docsync.Options{
		PreserveOrder: cfg.ReconstructPreserveOrder,
		SeedNew:       cfg.SeedNewDocuments,
	})
	syncer.Initialize()

	// The legacy backend only receives saved bodies when publishing is on.
	var pub articles.Publisher
	var legacy *upstream.Client
	if cfg.UpstreamPublish {
		legacy = upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeout, log)
		pub = legacy
		log.Info("publishing to legacy backend", "url", cfg.UpstreamURL)
	}

	svc := articles.NewService(db, syncer, pub, log, articles.Options{
		MinifyHTML:    cfg.MinifyHTML,
		ExcerptTokens: cfg.ExcerptTokens,
	})

	orch := pipeline.NewOrchestrator(cfg, svc, parser.Options{Reconstruct: syncer.Reconstruct}, log)
	orch.Start(ctx)

	srv := api.NewServer(svc, orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		if legacy != nil {
			legacy.Close()
		}
		if err := db.Close(); err != nil {
			log.Error("close database", "error", err)
		}
	}()

	log.Info("starting cardpress", "port", cfg.Port, "db", cfg.DBPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
