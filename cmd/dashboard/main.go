package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crypto-dashboard-go/internal/coingecko"
	"crypto-dashboard-go/internal/config"
	"crypto-dashboard-go/internal/dashboard"
	"crypto-dashboard-go/internal/database"
	"crypto-dashboard-go/internal/logger"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the snapshot database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open snapshot database", zap.Error(err))
	}

	// Initialize CoinGecko REST client
	restClient := coingecko.NewRestClient(&cfg.CoinGecko, log)
	if err := restClient.Ping(); err != nil {
		log.Fatal("Failed to reach CoinGecko API", zap.Error(err))
	}
	log.Info("Successfully connected to CoinGecko API.")

	// A dashboard run is one-shot, but the price fetch retries with backoff,
	// so Ctrl-C should still cancel it promptly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, cancelling...")
		cancel()
	}()

	engine := dashboard.NewEngine(log, &cfg, restClient, db)
	if err := engine.Run(ctx); err != nil {
		log.Fatal("Dashboard run failed", zap.Error(err))
	}
}
