package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/woominecraft/wmcbridge/internal/admin"
	"github.com/woominecraft/wmcbridge/internal/checkout"
	"github.com/woominecraft/wmcbridge/internal/command"
	"github.com/woominecraft/wmcbridge/internal/feed"
	"github.com/woominecraft/wmcbridge/internal/logger"
	"github.com/woominecraft/wmcbridge/internal/order"
	"github.com/woominecraft/wmcbridge/internal/player"
	"github.com/woominecraft/wmcbridge/internal/product"
	"github.com/woominecraft/wmcbridge/internal/router"
	"github.com/woominecraft/wmcbridge/internal/storage"
	postgres "github.com/woominecraft/wmcbridge/internal/storage/postgres"
	"github.com/woominecraft/wmcbridge/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func openStorage(dsn string) (storage.Storage, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.NewPostgresStorage(dsn)
	}
	return sqlite.Open(dsn)
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := openStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	mojang := &player.HTTPProfileClient{
		Client:  &http.Client{Timeout: cfg.MojangTimeout},
		BaseURL: cfg.MojangAddress,
	}
	playerSvc := player.NewService(mojang, cfg.ProfileCacheTTL)

	checkoutSvc := checkout.NewService(store)
	checkoutHandler := checkout.NewHandler(checkoutSvc, playerSvc)

	feedSvc := feed.NewService(store, cfg.FeedCacheTTL)
	feedHandler := feed.NewHandler(feedSvc, cfg.FeedKey)

	compiler := command.NewCompiler(store, store)

	orderSvc := order.NewService(store, compiler, feedSvc)
	orderHandler := order.NewHandler(orderSvc)

	productSvc := product.NewService(store, feedSvc)
	productHandler := product.NewHandler(productSvc)

	adminSvc := admin.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	adminHandler := admin.NewHandler(adminSvc)

	r := router.NewRouter(
		checkoutHandler,
		orderHandler,
		productHandler,
		feedHandler,
		adminHandler,
		[]byte(cfg.JWTSecret),
		store,
		cfg.HashKey,
	)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
