package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/shopbook-ledger/internal/metrics"
	"github.com/shopbook-ledger/internal/platform/persistence"
)

// PartyServiceImpl implements the PartyService interface
type PartyServiceImpl struct {
	partyRepo party.Repository
	entryRepo entry.Repository
	txn       persistence.TxnRunner
	logger    *slog.Logger
}

// NewPartyService creates a new party service
func NewPartyService(
	logger *slog.Logger,
	partyRepo party.Repository,
	entryRepo entry.Repository,
	txn persistence.TxnRunner,
) PartyService {
	return &PartyServiceImpl{
		partyRepo: partyRepo,
		entryRepo: entryRepo,
		txn:       txn,
		logger:    logger,
	}
}

// CreateParty creates a party, guarding against duplicate phone numbers
// within the same kind, and inserts both physical copies atomically.
func (s *PartyServiceImpl) CreateParty(ctx context.Context, user shared.UserContext, kind party.Kind, name, phone string) (*party.Party, error) {
	if phone != "" {
		existing, err := s.partyRepo.GetByPhone(ctx, user, kind, phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, party.ErrDuplicatePhone{Phone: phone}
		}
	}

	p, err := party.New(user, kind, name, phone)
	if err != nil {
		return nil, err
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.partyRepo.Create(txCtx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Party created",
		"party_id", p.ID.String(),
		"kind", string(p.Kind),
		"name", p.Name,
	)

	return p, nil
}

// GetParty retrieves a party by its ID, returns ErrPartyNotFound if missing
func (s *PartyServiceImpl) GetParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*party.Party, error) {
	return s.partyRepo.GetByID(ctx, user, partyID)
}

// ListParties returns a page of active parties of a kind plus the total count
func (s *PartyServiceImpl) ListParties(ctx context.Context, user shared.UserContext, kind party.Kind, page, perPage int) ([]*party.Party, int64, error) {
	offset := (page - 1) * perPage

	parties, err := s.partyRepo.List(ctx, user, kind, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.partyRepo.Count(ctx, user, kind)
	if err != nil {
		return nil, 0, err
	}

	return parties, total, nil
}

// DeleteParty moves the party to the recycle bin on both copies. Aggregates
// are untouched; restore surfaces the ledger exactly as it was.
func (s *PartyServiceImpl) DeleteParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	p, err := s.partyRepo.GetByID(ctx, user, partyID)
	if err != nil {
		return err
	}
	if p.IsDeleted {
		return party.ErrPartyDeleted
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.partyRepo.MarkDeleted(txCtx, user, p.ID, time.Now())
	})
	if err != nil {
		s.logger.Error("Failed to delete party", "party_id", p.ID.String(), "error", err)
		return err
	}

	s.logger.Info("Party moved to recycle bin", "party_id", p.ID.String(), "name", p.Name)
	return nil
}

// RestoreParty returns a deleted party to the active set on both copies.
func (s *PartyServiceImpl) RestoreParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	p, err := s.partyRepo.GetByID(ctx, user, partyID)
	if err != nil {
		return err
	}
	if !p.IsDeleted {
		return party.ErrPartyNotDeleted
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.partyRepo.MarkRestored(txCtx, user, p.ID)
	})
	if err != nil {
		s.logger.Error("Failed to restore party", "party_id", p.ID.String(), "error", err)
		return err
	}

	s.logger.Info("Party restored", "party_id", p.ID.String(), "name", p.Name)
	return nil
}

// PurgeParty physically removes a deleted party and every one of its
// entries from all storage copies. Children go first inside the same
// transaction, so a failure can never leave orphaned entries behind a
// missing parent or vice versa.
func (s *PartyServiceImpl) PurgeParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	p, err := s.partyRepo.GetByID(ctx, user, partyID)
	if err != nil {
		return err
	}
	if !p.IsDeleted {
		return party.ErrPartyNotDeleted
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entryRepo.PurgeByParty(txCtx, user, p.ID); err != nil {
			return err
		}
		return s.partyRepo.Purge(txCtx, user, p.ID)
	})
	if err != nil {
		s.logger.Error("Failed to purge party", "party_id", p.ID.String(), "error", err)
		return err
	}

	metrics.RowsPurged.WithLabelValues("party").Inc()
	s.logger.Info("Party purged with all entries", "party_id", p.ID.String(), "name", p.Name)
	return nil
}
