package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/api/service"
	"github.com/shopbook-ledger/internal/config"
	"github.com/shopbook-ledger/internal/data/mongo"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/shopbook-ledger/internal/logger"
	"github.com/shopbook-ledger/internal/platform/persistence"
)

// reconciler recomputes party aggregates from their entries. Run it against
// one user's books after a support incident, or on a schedule as a drift
// audit; run it while that user is idle.
func main() {
	userFlag := flag.String("user", "", "user id whose parties to recalculate (required)")
	partyFlag := flag.String("party", "", "recalculate a single party instead of the full batch")
	flag.Parse()

	userID, err := uuid.Parse(*userFlag)
	if err != nil || userID == uuid.Nil {
		fmt.Println("a valid -user id is required")
		flag.Usage()
		os.Exit(2)
	}

	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("reconciler")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoDB.Close(context.Background()); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}()

	entryRepo := mongo.NewEntryRepository(log, mongoDB.Database())
	partyRepo := mongo.NewPartyRepository(log, mongoDB.Database())
	txn := persistence.NewTxnRunner(mongoDB)

	reconcileService, err := service.NewReconcileService(log, partyRepo, entryRepo, txn, cfg.Reconcile.WorkerPoolSize)
	if err != nil {
		log.Error("Failed to initialize reconciliation service", "error", err)
		os.Exit(1)
	}
	defer reconcileService.Shutdown()

	user := shared.NewUserContext(userID)

	if *partyFlag != "" {
		partyID, err := uuid.Parse(*partyFlag)
		if err != nil {
			fmt.Println("invalid -party id")
			os.Exit(2)
		}

		totals, err := reconcileService.Recalculate(appCtx, user, partyID)
		if err != nil {
			log.Error("Recalculation failed", "party_id", partyID.String(), "error", err)
			os.Exit(1)
		}
		log.Info("Party recalculated",
			"party_id", partyID.String(),
			"total_balance", totals.Balance,
			"total_debit", totals.Debit,
			"total_credit", totals.Credit,
		)
		return
	}

	report, err := reconcileService.RecalculateAll(appCtx, user)
	if err != nil {
		log.Error("Batch recalculation failed", "error", err)
		os.Exit(1)
	}

	log.Info("Batch recalculation finished",
		"processed", report.Processed,
		"drifted", report.Drifted,
		"failures", len(report.Failures),
	)
	for _, failure := range report.Failures {
		log.Warn("Party could not be recalculated",
			"party_id", failure.PartyID.String(),
			"name", failure.Name,
			"error", failure.Error,
		)
	}
	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}
