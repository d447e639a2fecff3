package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/shopbook-ledger/internal/metrics"
	"github.com/shopbook-ledger/internal/platform/persistence"
)

// ReconcileServiceImpl implements the ReconcileService interface, using a
// worker pool for the batch walk.
type ReconcileServiceImpl struct {
	partyRepo party.Repository
	entryRepo entry.Repository
	txn       persistence.TxnRunner
	pool      *ants.Pool
	logger    *slog.Logger
}

// NewReconcileService creates a reconciliation service with a worker pool of
// the given size for batch runs.
func NewReconcileService(
	logger *slog.Logger,
	partyRepo party.Repository,
	entryRepo entry.Repository,
	txn persistence.TxnRunner,
	poolSize int,
) (*ReconcileServiceImpl, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &ReconcileServiceImpl{
		partyRepo: partyRepo,
		entryRepo: entryRepo,
		txn:       txn,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Recalculate fetches every active entry of the party, folds fresh totals
// from scratch, and overwrites the stored aggregate on both physical copies.
// The fold ignores the stored aggregate entirely, which is what makes this
// the authoritative repair for drift; running it twice without intervening
// mutations yields the same result.
func (s *ReconcileServiceImpl) Recalculate(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (entry.Totals, error) {
	p, err := s.partyRepo.GetByID(ctx, user, partyID)
	if err != nil {
		return entry.Totals{}, err
	}

	entries, err := s.entryRepo.ListAllByParty(ctx, user, partyID)
	if err != nil {
		return entry.Totals{}, err
	}

	totals := entry.Fold(entries)

	if stored := p.Totals(); stored != totals {
		metrics.ReconcileDrift.Inc()
		s.logger.Warn("Recalculation corrected drifted aggregate",
			"party_id", p.ID.String(),
			"name", p.Name,
			"stored_balance", stored.Balance,
			"computed_balance", totals.Balance,
			"stored_debit", stored.Debit,
			"computed_debit", totals.Debit,
			"stored_credit", stored.Credit,
			"computed_credit", totals.Credit,
		)
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.partyRepo.OverwriteTotals(txCtx, user, partyID, totals)
	})
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("failure").Inc()
		return entry.Totals{}, err
	}

	metrics.ReconcileRuns.WithLabelValues("success").Inc()
	return totals, nil
}

// RecalculateAll walks every active party - customers, then suppliers, then
// expense categories - recalculating each on the worker pool. The run is
// best-effort: a failed party is recorded in the report and the walk moves
// on. Callers should pause data entry for the duration; see the
// ReconcileService contract.
func (s *ReconcileServiceImpl) RecalculateAll(ctx context.Context, user shared.UserContext) (*BatchReport, error) {
	report := &BatchReport{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, kind := range []party.Kind{party.KindCustomer, party.KindSupplier, party.KindExpenseCategory} {
		parties, err := s.partyRepo.ListAll(ctx, user, kind)
		if err != nil {
			// A kind that cannot even be listed fails the batch; individual
			// party failures below do not.
			return nil, err
		}

		s.logger.Info("Batch recalculation started for kind",
			"kind", string(kind),
			"parties", len(parties),
		)

		for _, p := range parties {
			p := p
			wg.Add(1)
			submitErr := s.pool.Submit(func() {
				defer wg.Done()

				stored := p.Totals()
				totals, err := s.Recalculate(ctx, user, p.ID)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failures = append(report.Failures, PartyFailure{
						PartyID: p.ID,
						Name:    p.Name,
						Error:   err.Error(),
					})
					s.logger.Error("Batch recalculation failed for party",
						"party_id", p.ID.String(),
						"name", p.Name,
						"error", err,
					)
					return
				}
				report.Processed++
				if stored != totals {
					report.Drifted++
				}
				s.logger.Info("Batch recalculation progressed",
					"party_id", p.ID.String(),
					"name", p.Name,
					"balance", totals.Balance,
				)
			})
			if submitErr != nil {
				wg.Done()
				mu.Lock()
				report.Failures = append(report.Failures, PartyFailure{
					PartyID: p.ID,
					Name:    p.Name,
					Error:   submitErr.Error(),
				})
				mu.Unlock()
			}
		}

		// Finish one kind before starting the next, keeping the
		// customers-then-suppliers ordering observable in the logs.
		wg.Wait()
	}

	s.logger.Info("Batch recalculation finished",
		"processed", report.Processed,
		"drifted", report.Drifted,
		"failed", len(report.Failures),
	)

	return report, nil
}

// Shutdown releases the worker pool.
func (s *ReconcileServiceImpl) Shutdown() {
	s.logger.Info("Shutting down reconciliation worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}
