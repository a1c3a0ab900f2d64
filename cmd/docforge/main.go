// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the docforge server. It loads
// configuration, connects to services, installs the system templates,
// schedules document purges and serves the JSON API with graceful
// shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"docforge/internal/cache"
	"docforge/internal/config"
	"docforge/internal/database"
	"docforge/internal/documents"
	"docforge/internal/engine"
	"docforge/internal/events"
	"docforge/internal/handlers"
	"docforge/internal/locale"
	"docforge/internal/markdown"
	"docforge/internal/middleware"
	"docforge/internal/router"
	"docforge/internal/storage"
	"docforge/internal/store"
	"docforge/internal/store/memory"
	"docforge/internal/templates"
)

// repositories bundles whichever record store is configured.
type repositories struct {
	templates  templates.Repository
	documents  documents.Repository
	categories templates.CategoryRepository
	eventLog   *store.EventLogStore
	close      func()
}

func main() {
	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if os.Getenv("APP_ENV") == "" || os.Getenv("APP_ENV") == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("failed to open record store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	// Event fan-out: log always, Valkey and the event log when available.
	sinks := events.Multi{events.LogSink{}}
	if repos.eventLog != nil {
		defer repos.eventLog.Wait()
		sinks = append(sinks, repos.eventLog)
	}

	var docOpts []documents.Option
	if cfg.ValkeyEnabled {
		valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		publisher := events.NewRedisPublisher(valkeyClient, cfg.EventsChannel)
		defer publisher.Wait()
		sinks = append(sinks, publisher)

		if cfg.DocumentCacheTTL > 0 {
			docOpts = append(docOpts, documents.WithCache(cache.NewDocumentCache(valkeyClient, cfg.DocumentCacheTTL)))
		}
	} else {
		slog.Warn("valkey disabled, events are not published and documents are not cached")
	}

	// S3-compatible archive (optional, the API works without it).
	archive, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	var apiOpts []handlers.Option
	if archive != nil {
		slog.Info("s3 archive connected", "endpoint", cfg.S3Endpoint, "bucket", archive.Bucket())
		docOpts = append(docOpts, documents.WithArchive(archive))
		apiOpts = append(apiOpts, handlers.WithArchive(archive))
	} else {
		slog.Warn("s3 storage not configured, rendered documents are not archived")
	}
	if repos.eventLog != nil {
		apiOpts = append(apiOpts, handlers.WithAuditLog(repos.eventLog))
	}

	filters, err := locale.NewRegistry(cfg.DocumentCurrency)
	if err != nil {
		slog.Error("failed to build locale filters", "currency", cfg.DocumentCurrency, "error", err)
		os.Exit(1)
	}

	manager := templates.NewManager(repos.templates, sinks)
	docOpts = append(docOpts,
		documents.WithMarkdown(markdown.Converter{}),
		documents.WithTTL(cfg.DocumentTTL),
	)
	docs := documents.NewService(manager, repos.documents, engine.NewValidator(), engine.NewInterpreter(filters), sinks, docOpts...)
	catalog := templates.NewCatalog(repos.categories)

	installed, err := manager.EnsureSystemTemplates(ctx)
	if err != nil {
		slog.Error("failed to install system templates", "error", err)
		os.Exit(1)
	}
	slog.Info("system templates ready", "installed", installed)

	// Expired documents are purged on a schedule, not on read.
	scheduler := cron.New()
	if cfg.DocumentTTL > 0 {
		if _, err := scheduler.AddFunc(cfg.PurgeSchedule, func() {
			purgeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := docs.PurgeExpired(purgeCtx); err != nil {
				slog.Error("document purge failed", "error", err)
			}
		}); err != nil {
			slog.Error("failed to schedule document purge", "schedule", cfg.PurgeSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		slog.Info("document purge scheduled", "schedule", cfg.PurgeSchedule, "ttl", cfg.DocumentTTL)
	}

	var limiter *middleware.RateLimiter
	if cfg.RenderRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RenderRateLimit, time.Minute)
		defer limiter.Stop()
	}

	api := handlers.NewAPI(manager, docs, catalog, apiOpts...)
	r := router.New(api, limiter)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	<-scheduler.Stop().Done()

	slog.Info("server stopped gracefully")
}

// openRepositories connects the configured record store. PostgreSQL is
// migrated and seeded with the default categories on every start.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.StoreDriver == config.StoreMemory {
		slog.Warn("using in-memory store, records are lost on restart")
		mem := memory.New()
		return &repositories{
			templates:  mem,
			documents:  mem,
			categories: mem,
			close:      func() {},
		}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := database.Seed(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		templates:  store.NewTemplateStore(db),
		documents:  store.NewDocumentStore(db),
		categories: store.NewCategoryStore(db),
		eventLog:   store.NewEventLogStore(db),
		close:      func() { db.Close() },
	}, nil
}
