package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopbook-ledger/internal/api"
	"github.com/shopbook-ledger/internal/api/service"
	"github.com/shopbook-ledger/internal/config"
	"github.com/shopbook-ledger/internal/data/mongo"
	"github.com/shopbook-ledger/internal/logger"
	"github.com/shopbook-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and the transaction runner
	entryRepo := mongo.NewEntryRepository(log, mongoDB.Database())
	partyRepo := mongo.NewPartyRepository(log, mongoDB.Database())
	productRepo := mongo.NewProductRepository(log, mongoDB.Database())
	txn := persistence.NewTxnRunner(mongoDB)

	// Initialize services
	ledgerService := service.NewLedgerService(log, entryRepo, partyRepo, productRepo, txn, cfg.BadDebt.AgingMonths)
	partyService := service.NewPartyService(log, partyRepo, entryRepo, txn)
	productService := service.NewProductService(log, productRepo)
	recycleService := service.NewRecycleService(log, partyRepo, entryRepo, txn, cfg.RecycleBin.Retention)
	reconcileService, err := service.NewReconcileService(log, partyRepo, entryRepo, txn, cfg.Reconcile.WorkerPoolSize)
	if err != nil {
		log.Error("Failed to initialize reconciliation service", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, ledgerService, partyService, productService, recycleService, reconcileService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the recalculation worker pool
	reconcileService.Shutdown()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
