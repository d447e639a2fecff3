package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/shopbook-ledger/internal/metrics"
	"github.com/shopbook-ledger/internal/platform/persistence"
)

// RecycleServiceImpl implements the RecycleService interface
type RecycleServiceImpl struct {
	partyRepo party.Repository
	entryRepo entry.Repository
	txn       persistence.TxnRunner
	retention time.Duration
	logger    *slog.Logger
}

// NewRecycleService creates a new recycle-bin service
func NewRecycleService(
	logger *slog.Logger,
	partyRepo party.Repository,
	entryRepo entry.Repository,
	txn persistence.TxnRunner,
	retention time.Duration,
) RecycleService {
	return &RecycleServiceImpl{
		partyRepo: partyRepo,
		entryRepo: entryRepo,
		txn:       txn,
		retention: retention,
		logger:    logger,
	}
}

// ListBin sweeps rows past the retention window, then returns what remains.
// The sweep runs opportunistically on view load rather than as a scheduled
// job, so an idle account never pays for a scheduler.
func (s *RecycleServiceImpl) ListBin(ctx context.Context, user shared.UserContext) (*RecycleBin, error) {
	s.sweep(ctx, user)

	parties, err := s.partyRepo.ListDeleted(ctx, user)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListDeleted(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RecycleBin{Parties: parties, Entries: entries}, nil
}

// EmptyBin permanently purges every deleted party (with its entries) and
// every deleted entry. Irreversible.
func (s *RecycleServiceImpl) EmptyBin(ctx context.Context, user shared.UserContext) error {
	parties, err := s.partyRepo.ListDeleted(ctx, user)
	if err != nil {
		return err
	}
	for _, p := range parties {
		if err := s.purgeParty(ctx, user, p); err != nil {
			return err
		}
	}

	entries, err := s.entryRepo.ListDeleted(ctx, user)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.purgeEntry(ctx, user, e); err != nil {
			return err
		}
	}

	s.logger.Info("Recycle bin emptied",
		"parties_purged", len(parties),
		"entries_purged", len(entries),
	)
	return nil
}

// sweep purges rows whose deletion is older than the retention window.
// Best-effort: one row's failure is logged and the sweep continues, so a
// flaky purge never blocks the recycle-bin view.
func (s *RecycleServiceImpl) sweep(ctx context.Context, user shared.UserContext) {
	cutoff := time.Now().Add(-s.retention)

	parties, err := s.partyRepo.ListDeletedBefore(ctx, user, cutoff)
	if err != nil {
		s.logger.Error("Recycle sweep failed to list expired parties", "error", err)
	}
	for _, p := range parties {
		if err := s.purgeParty(ctx, user, p); err != nil {
			s.logger.Error("Recycle sweep failed to purge party",
				"party_id", p.ID.String(),
				"error", err)
		}
	}

	// Entries are listed after the party cascade so rows already removed
	// with their parent don't show up as purge candidates.
	entries, err := s.entryRepo.ListDeletedBefore(ctx, user, cutoff)
	if err != nil {
		s.logger.Error("Recycle sweep failed to list expired entries", "error", err)
	}
	for _, e := range entries {
		if err := s.purgeEntry(ctx, user, e); err != nil {
			s.logger.Error("Recycle sweep failed to purge entry",
				"entry_id", e.ID.String(),
				"error", err)
		}
	}

	if len(parties) > 0 || len(entries) > 0 {
		s.logger.Info("Recycle sweep completed",
			"parties_purged", len(parties),
			"entries_purged", len(entries),
		)
	}
}

// purgeParty removes a party and all of its entries, children first, in one
// transaction.
func (s *RecycleServiceImpl) purgeParty(ctx context.Context, user shared.UserContext, p *party.Party) error {
	err := s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entryRepo.PurgeByParty(txCtx, user, p.ID); err != nil {
			return err
		}
		return s.partyRepo.Purge(txCtx, user, p.ID)
	})
	if err != nil {
		if errors.Is(err, party.ErrPartyNotFound{}) {
			return nil // already gone
		}
		return err
	}

	metrics.RowsPurged.WithLabelValues("party").Inc()
	return nil
}

// purgeEntry removes a single deleted entry, tolerating rows that vanished
// with a parent cascade between listing and purging.
func (s *RecycleServiceImpl) purgeEntry(ctx context.Context, user shared.UserContext, e *entry.Entry) error {
	if err := s.entryRepo.Purge(ctx, user, e.ID); err != nil {
		if errors.Is(err, entry.ErrEntryNotFound{}) {
			return nil
		}
		return err
	}

	metrics.RowsPurged.WithLabelValues("entry").Inc()
	return nil
}
