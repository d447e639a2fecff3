package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/product"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/shopbook-ledger/internal/metrics"
	"github.com/shopbook-ledger/internal/platform/persistence"
)

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	entryRepo   entry.Repository
	partyRepo   party.Repository
	productRepo product.Repository
	txn         persistence.TxnRunner
	agingMonths int
	logger      *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	logger *slog.Logger,
	entryRepo entry.Repository,
	partyRepo party.Repository,
	productRepo product.Repository,
	txn persistence.TxnRunner,
	agingMonths int,
) LedgerService {
	return &LedgerServiceImpl{
		entryRepo:   entryRepo,
		partyRepo:   partyRepo,
		productRepo: productRepo,
		txn:         txn,
		agingMonths: agingMonths,
		logger:      logger,
	}
}

// AddEntry validates the draft against its owning party, constructs the
// entry, and commits the entry insert, the aggregate delta on both party
// copies, and any inventory decrement as one atomic batch.
func (s *LedgerServiceImpl) AddEntry(ctx context.Context, user shared.UserContext, draft entry.Draft) (*entry.Entry, error) {
	owner, err := s.partyRepo.GetByID(ctx, user, draft.PartyID)
	if err != nil {
		return nil, err
	}
	if owner.IsDeleted {
		return nil, party.ErrPartyDeleted
	}
	if !owner.Kind.AllowsEntryKind(draft.Kind) {
		return nil, party.ErrKindMismatch
	}

	draft.PartyName = owner.Name
	e, err := entry.New(user, draft)
	if err != nil {
		return nil, err
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entryRepo.Create(txCtx, e); err != nil {
			return err
		}
		if err := s.partyRepo.ApplyDelta(txCtx, user, e.PartyID, e.SignedDelta(), e.Date); err != nil {
			return err
		}
		return s.adjustInventory(txCtx, user, e, -1)
	})
	if err != nil {
		s.logger.Error("Failed to add ledger entry",
			"party_id", e.PartyID.String(),
			"kind", string(e.Kind),
			"amount", e.Amount,
			"error", err,
		)
		return nil, err
	}

	metrics.EntriesCreated.WithLabelValues(string(e.Kind)).Inc()
	s.logger.Info("Ledger entry added",
		"entry_id", e.ID.String(),
		"party_id", e.PartyID.String(),
		"kind", string(e.Kind),
		"amount", e.Amount,
	)

	return e, nil
}

// EditEntry rewrites amount/date/items on an active entry. The accumulator
// only moves on create/delete/restore, so an edited amount leaves the owning
// party's aggregates untouched; the warning below is the breadcrumb for
// diagnosing the drift this causes until someone runs a recalculation.
func (s *LedgerServiceImpl) EditEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID, patch entry.Patch) (*entry.Entry, error) {
	e, err := s.entryRepo.GetByID(ctx, user, entryID)
	if err != nil {
		return nil, err
	}
	if e.IsDeleted {
		return nil, entry.ErrEntryDeleted
	}

	previousAmount := e.Amount
	if err := e.ApplyPatch(patch); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	if e.Amount != previousAmount {
		s.logger.Warn("Entry amount edited without aggregate adjustment; party totals will drift until recalculated",
			"entry_id", e.ID.String(),
			"party_id", e.PartyID.String(),
			"old_amount", previousAmount,
			"new_amount", e.Amount,
		)
	}

	return e, nil
}

// DeleteEntry soft-deletes the entry and atomically reverses its balance
// contribution and inventory consumption.
func (s *LedgerServiceImpl) DeleteEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	e, err := s.entryRepo.GetByID(ctx, user, entryID)
	if err != nil {
		return err
	}
	if e.IsDeleted {
		return entry.ErrEntryDeleted
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entryRepo.MarkDeleted(txCtx, user, e.ID, time.Now()); err != nil {
			return err
		}
		if err := s.partyRepo.ApplyDelta(txCtx, user, e.PartyID, e.SignedDelta().Negate(), ""); err != nil {
			return err
		}
		return s.adjustInventory(txCtx, user, e, +1)
	})
	if err != nil {
		s.logger.Error("Failed to delete ledger entry", "entry_id", e.ID.String(), "error", err)
		return err
	}

	metrics.EntriesDeleted.Inc()
	s.logger.Info("Ledger entry moved to recycle bin", "entry_id", e.ID.String(), "party_id", e.PartyID.String())
	return nil
}

// RestoreEntry brings a deleted entry back, atomically re-applying its
// original delta and re-consuming inventory.
func (s *LedgerServiceImpl) RestoreEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	e, err := s.entryRepo.GetByID(ctx, user, entryID)
	if err != nil {
		return err
	}
	if !e.IsDeleted {
		return entry.ErrEntryNotDeleted
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entryRepo.MarkRestored(txCtx, user, e.ID); err != nil {
			return err
		}
		if err := s.partyRepo.ApplyDelta(txCtx, user, e.PartyID, e.SignedDelta(), ""); err != nil {
			return err
		}
		return s.adjustInventory(txCtx, user, e, -1)
	})
	if err != nil {
		s.logger.Error("Failed to restore ledger entry", "entry_id", e.ID.String(), "error", err)
		return err
	}

	metrics.EntriesRestored.Inc()
	s.logger.Info("Ledger entry restored", "entry_id", e.ID.String(), "party_id", e.PartyID.String())
	return nil
}

// PurgeEntry physically removes an already-deleted entry. The balance was
// reversed when the entry entered the bin, so no aggregate moves here.
func (s *LedgerServiceImpl) PurgeEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	e, err := s.entryRepo.GetByID(ctx, user, entryID)
	if err != nil {
		return err
	}
	if !e.IsDeleted {
		return entry.ErrEntryNotDeleted
	}

	if err := s.entryRepo.Purge(ctx, user, e.ID); err != nil {
		return err
	}

	metrics.RowsPurged.WithLabelValues("entry").Inc()
	s.logger.Info("Ledger entry purged", "entry_id", e.ID.String())
	return nil
}

// ListEntries returns a newest-first page decorated with running balances.
// The walk is anchored at the party's current aggregate; for pages past the
// first, the anchor is rolled back over the newer entries so every page
// stays continuous with the aggregate at the top of the ledger.
func (s *LedgerServiceImpl) ListEntries(ctx context.Context, user shared.UserContext, partyID uuid.UUID, page, perPage int) ([]entry.WithRunningBalance, int64, error) {
	owner, err := s.partyRepo.GetByID(ctx, user, partyID)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	entries, err := s.entryRepo.ListByParty(ctx, user, partyID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.entryRepo.CountByParty(ctx, user, partyID)
	if err != nil {
		return nil, 0, err
	}

	anchor := owner.TotalBalance
	if offset > 0 {
		newer, err := s.entryRepo.ListByParty(ctx, user, partyID, offset, 0)
		if err != nil {
			return nil, 0, err
		}
		for _, n := range newer {
			anchor -= n.SignedDelta().Balance
		}
	}

	return entry.DecorateRunningBalance(entries, anchor), total, nil
}

// ExportRange computes the report rows for [from, to] from the full entry
// list, including the opening balance carried into the window.
func (s *LedgerServiceImpl) ExportRange(ctx context.Context, user shared.UserContext, partyID uuid.UUID, from, to civildate.Date) (*entry.RangeExport, error) {
	if !from.IsValid() || !to.IsValid() || to.Before(from) {
		return nil, entry.ErrInvalidDate
	}
	if _, err := s.partyRepo.GetByID(ctx, user, partyID); err != nil {
		return nil, err
	}

	all, err := s.entryRepo.ListAllByParty(ctx, user, partyID)
	if err != nil {
		return nil, err
	}

	export := entry.ExportRange(all, from, to)
	return &export, nil
}

// BadDebt ages the party's receivable over its full, unpaginated entry list.
func (s *LedgerServiceImpl) BadDebt(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*entry.BadDebtReport, error) {
	if _, err := s.partyRepo.GetByID(ctx, user, partyID); err != nil {
		return nil, err
	}

	all, err := s.entryRepo.ListAllByParty(ctx, user, partyID)
	if err != nil {
		return nil, err
	}

	report := entry.ComputeBadDebt(all, civildate.Today(), s.agingMonths)
	return &report, nil
}

// ProfitSummary derives gross profit for the date range across every party.
func (s *LedgerServiceImpl) ProfitSummary(ctx context.Context, user shared.UserContext, from, to civildate.Date) (*entry.ProfitSummary, error) {
	if !from.IsValid() || !to.IsValid() || to.Before(from) {
		return nil, entry.ErrInvalidDate
	}

	inRange, err := s.entryRepo.ListByDateRange(ctx, user, from, to)
	if err != nil {
		return nil, err
	}

	summary := entry.ComputeProfitSummary(inRange, from, to)
	if summary.LegacyMode {
		s.logger.Info("Profit summary computed in legacy mode",
			"user_id", user.UserID.String(),
			"from", from.String(),
			"to", to.String())
	}
	return &summary, nil
}

// adjustInventory moves quantity_on_hand for every product-linked line item.
// sign is -1 when the sale consumes stock (create/restore) and +1 when it
// returns stock (delete).
func (s *LedgerServiceImpl) adjustInventory(ctx context.Context, user shared.UserContext, e *entry.Entry, sign int64) error {
	for _, item := range e.LineItems {
		if item.ProductID == nil {
			continue
		}
		if err := s.productRepo.AdjustQuantity(ctx, user, *item.ProductID, sign*item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
