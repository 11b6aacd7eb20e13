package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/electrosoundpack/storefront-backend/api/controllers"
	"github.com/electrosoundpack/storefront-backend/api/routes"
	"github.com/electrosoundpack/storefront-backend/internal/auth"
	"github.com/electrosoundpack/storefront-backend/internal/cart"
	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/internal/freshness"
	"github.com/electrosoundpack/storefront-backend/internal/media"
	"github.com/electrosoundpack/storefront-backend/internal/transfer"
	"github.com/electrosoundpack/storefront-backend/internal/users"
	"github.com/electrosoundpack/storefront-backend/pkg/auth/session"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	"github.com/electrosoundpack/storefront-backend/pkg/db"
	"github.com/electrosoundpack/storefront-backend/pkg/env"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/metrics"
	"github.com/electrosoundpack/storefront-backend/pkg/migrate"
	"github.com/electrosoundpack/storefront-backend/pkg/redis"
	"github.com/electrosoundpack/storefront-backend/pkg/security"
	"github.com/electrosoundpack/storefront-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.Service.Name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	blobStore, err := local.NewClient(ctx, cfg.Media, logg)
	requireResource(ctx, logg, "media storage", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	hasher := security.NewHasher(cfg.Password)

	productRepo := catalog.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	tracker, err := freshness.NewTracker(redisClient, redisClient.CatalogKey(cfg.Catalog.FreshnessMarker), productRepo, logg)
	requireResource(ctx, logg, "freshness tracker", err)

	mediaService, err := media.NewService(blobStore, cfg.Media.MaxFilesPerReq, logg)
	requireResource(ctx, logg, "media service", err)

	catalogService, err := catalog.NewService(productRepo, tracker, mediaService, storeMetrics, logg)
	requireResource(ctx, logg, "catalog service", err)

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), storeMetrics)
	requireResource(ctx, logg, "cart service", err)

	userService, err := users.NewService(userRepo, hasher, cfg.Password.MinLength)
	requireResource(ctx, logg, "user service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:          userRepo,
		Accounts:          userService,
		SessionManager:    sessionManager,
		Hasher:            hasher,
		JWTConfig:         cfg.JWT,
		MinPasswordLength: cfg.Password.MinLength,
	})
	requireResource(ctx, logg, "auth service", err)

	importer, err := transfer.NewImporter(productRepo, mediaService, tracker, storeMetrics, logg)
	requireResource(ctx, logg, "csv importer", err)

	exporter, err := transfer.NewExporter(productRepo, userRepo)
	requireResource(ctx, logg, "csv exporter", err)

	handler := routes.NewRouter(cfg, logg, routes.Infra{
		Pingers: map[string]controllers.Pinger{
			"db":      dbClient,
			"redis":   redisClient,
			"storage": blobStore,
		},
		Sessions:    sessionManager,
		RateLimits:  redisClient,
		Gatherer:    registry,
		HTTPMetrics: httpMetrics,
	}, routes.Services{
		Catalog:   catalogService,
		Cart:      cartService,
		Users:     userService,
		Auth:      authService,
		Freshness: tracker,
		Media:     mediaService,
		Importer:  importer,
		Exporter:  exporter,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"media_root": blobStore.Root(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
