package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/admin"
	"github.com/mynature/storefront/internal/auth"
	"github.com/mynature/storefront/internal/catalog"
	"github.com/mynature/storefront/internal/config"
	"github.com/mynature/storefront/internal/dashboard"
	"github.com/mynature/storefront/internal/db"
	storefrontHttp "github.com/mynature/storefront/internal/handler/http"
	"github.com/mynature/storefront/internal/order"
	"github.com/mynature/storefront/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.NewConfig(os.Getenv("ENV_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	catalogRepo := catalog.NewRepository(dbConn.Pool)
	catalogSvc := catalog.NewService(catalogRepo)

	orderRepo := order.NewRepository(dbConn.Pool)
	orderSvc := order.NewService(orderRepo, catalogRepo)

	authRepo := auth.NewRepository(dbConn.Pool)
	authSvc := auth.NewService(authRepo)

	allowlist := admin.NewAllowlist(dbConn.Pool)
	gate := admin.NewGate(authSvc, allowlist, storefrontHttp.LoginPath)

	dashboardSvc := dashboard.NewService(orderSvc, catalogSvc)

	var uploader storefrontHttp.Uploader
	storageClient, err := storage.NewClient(cfg.Storage)
	if err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			log.Fatal().Err(err).Msg("Failed to configure object storage")
		}
		log.Warn().Msg("Object storage not configured, image uploads disabled")
	} else {
		uploader = storageClient
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go gate.Watch(watchCtx, authSvc.Subscribe())

	router := storefrontHttp.NewRouter(storefrontHttp.RouterDeps{
		Catalog:   catalogSvc,
		Orders:    orderSvc,
		Auth:      authSvc,
		Allowlist: allowlist,
		Gate:      gate,
		Dashboard: dashboardSvc,
		Uploader:  uploader,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Storefront stopped gracefully")
}
