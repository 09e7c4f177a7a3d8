package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gmchicks/storefront-backend/api/routes"
	"github.com/gmchicks/storefront-backend/internal/cart"
	"github.com/gmchicks/storefront-backend/internal/orders"
	"github.com/gmchicks/storefront-backend/internal/payments"
	"github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/internal/visits"
	"github.com/gmchicks/storefront-backend/pkg/config"
	"github.com/gmchicks/storefront-backend/pkg/db"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	"github.com/gmchicks/storefront-backend/pkg/metrics"
	"github.com/gmchicks/storefront-backend/pkg/migrate"
	"github.com/gmchicks/storefront-backend/pkg/outbox"
	"github.com/gmchicks/storefront-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

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
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	deps, err := buildDependencies(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Redis = redisClient

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
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
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server shut down gracefully")
	}
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Dependencies, error) {
	conn := dbClient.DB()
	storefrontMetrics := metrics.NewStorefrontMetrics(prometheus.DefaultRegisterer)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}

	cartService, err := cart.NewService(cart.NewRepository(conn), productRepo, logg, storefrontMetrics)
	if err != nil {
		return routes.Dependencies{}, err
	}

	visitService, err := visits.NewService(visits.NewRepository(conn), dbClient, emitter, cfg.Visits, logg, nil)
	if err != nil {
		return routes.Dependencies{}, err
	}

	orderRepo := orders.NewRepository(conn)
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:              orderRepo,
		Tx:                dbClient,
		Inventory:         orders.NewInventory(),
		Outbox:            emitter,
		Catalog:           productRepo,
		Visits:            visitService,
		Logger:            logg,
		Metrics:           storefrontMetrics,
		LowStockThreshold: cfg.Orders.LowStockThreshold,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	initiator, err := payments.NewInitiator(cfg.Payments)
	if err != nil {
		return routes.Dependencies{}, err
	}
	paymentService, err := payments.NewService(orderRepo, dbClient, emitter, initiator, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		DB:             dbClient,
		HTTPMetrics:    metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		MetricsHandler: promhttp.Handler(),
		Products:       productService,
		Cart:           cartService,
		Orders:         orderService,
		Payments:       paymentService,
		Visits:         visitService,
	}, nil
}
