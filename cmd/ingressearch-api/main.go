package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/ingressearch-api/internal/config"
	"github.com/dimitrije/ingressearch-api/internal/database"
	"github.com/dimitrije/ingressearch-api/internal/handlers"
	appmw "github.com/dimitrije/ingressearch-api/internal/middleware"
	"github.com/dimitrije/ingressearch-api/internal/metrics"
	"github.com/dimitrije/ingressearch-api/internal/services"
	"github.com/dimitrije/ingressearch-api/internal/sse"
	"github.com/dimitrije/ingressearch-api/internal/store"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	ctx := context.Background()

	var st store.Store
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		st = store.NewMemory()
	default:
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		st = store.NewPostgres(db)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	executor := services.NewExecutor(st, m)
	collectionService := services.NewCollectionService(st, logger)
	documentService := services.NewDocumentService(st, logger)
	searchService := services.NewSearchService(executor, m, logger)
	savedSearchService := services.NewSavedSearchService(st, executor, m, logger)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := sse.NewHub()
	go hub.Run(hubCtx)

	collectionHandler := handlers.NewCollectionHandler(collectionService, hub)
	documentHandler := handlers.NewDocumentHandler(documentService, hub)
	searchHandler := handlers.NewSearchHandler(searchService, savedSearchService, hub)
	eventsHandler := handlers.NewEventsHandler(hub, collectionService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", appmw.RequestIDHeader},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(appmw.RequestLogger(logger))

	root := app.Group("/api/v1")
	root.Get("/collections/:collectionId/events", eventsHandler.Connect)

	api := root.Group("")
	api.Use(appmw.Timeout(cfg.RequestTimeout))

	api.Get("/collections", collectionHandler.List)
	api.Post("/collections", collectionHandler.Create)
	api.Get("/collections/:collectionId", collectionHandler.Get)
	api.Patch("/collections/:collectionId", collectionHandler.Rename)
	api.Delete("/collections/:collectionId", collectionHandler.Delete)

	api.Post("/collections/:collectionId/documents", documentHandler.Create)
	api.Get("/collections/:collectionId/documents/:documentId", documentHandler.Get)
	api.Patch("/collections/:collectionId/documents/:documentId", documentHandler.Update)
	api.Delete("/collections/:collectionId/documents/:documentId", documentHandler.Delete)

	api.Post("/collections/:collectionId/search", searchHandler.Search)
	api.Get("/collections/:collectionId/searches", searchHandler.ListSaved)
	api.Post("/collections/:collectionId/searches", searchHandler.CreateSaved)
	api.Get("/collections/:collectionId/searches/:searchId", searchHandler.GetSaved)
	api.Patch("/collections/:collectionId/searches/:searchId", searchHandler.UpdateSaved)
	api.Delete("/collections/:collectionId/searches/:searchId", searchHandler.DeleteSaved)
	api.Post("/collections/:collectionId/searches/:searchId/run", searchHandler.RunSaved)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok", "store": cfg.Store})
	})

	if cfg.MetricsAddr != "" {
		metricsServer := metrics.Serve(cfg.MetricsAddr, registry, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics server starting", "addr", cfg.MetricsAddr)
	}

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("server starting", "addr", addr, "store", cfg.Store)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
}
