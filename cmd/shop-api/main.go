package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/shop-api/internal/auth"
	authsqlite "github.com/jcmexdev/shop-api/internal/auth/sqlite"
	"github.com/jcmexdev/shop-api/internal/basket"
	basketsqlite "github.com/jcmexdev/shop-api/internal/basket/sqlite"
	"github.com/jcmexdev/shop-api/internal/catalog"
	catalogsqlite "github.com/jcmexdev/shop-api/internal/catalog/sqlite"
	"github.com/jcmexdev/shop-api/internal/httpx"
	"github.com/jcmexdev/shop-api/internal/pkg/cache"
	"github.com/jcmexdev/shop-api/internal/pkg/sqlitedb"
	"github.com/jcmexdev/shop-api/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger("shop-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "shop-api"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	db, err := sqlitedb.Open(getEnv("SHOP_DB_PATH", "./data/shop.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// The catalog store must come first: the basket join table references
	// the products table it creates.
	catalogRepo, err := catalogsqlite.New(db)
	if err != nil {
		slog.Error("failed to initialise catalog store", "error", err)
		os.Exit(1)
	}
	basketRepo, err := basketsqlite.New(db)
	if err != nil {
		slog.Error("failed to initialise basket store", "error", err)
		os.Exit(1)
	}
	authRepo, err := authsqlite.New(db)
	if err != nil {
		slog.Error("failed to initialise auth store", "error", err)
		os.Exit(1)
	}

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisCache := cache.NewRedisCache(redisAddr, "shop")

	catalogSvc := catalog.NewService(catalogRepo, redisCache)
	basketSvc := basket.NewService(basketRepo)
	authSvc := auth.NewService(authRepo, redisCache)

	handler := httpx.NewHandler(basketSvc, catalogSvc)
	router := httpx.NewRouter(handler, authSvc)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("shop API running", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
