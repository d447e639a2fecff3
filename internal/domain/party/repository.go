package party

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// Repository manages party persistence across both physical copies of each
// record (the root copy and the user-scoped copy). Every mutating method is
// a dual-copy write: call sites are never given a way to touch one copy
// only. Reads serve from the user-scoped copy.
type Repository interface {
	Create(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*Party, error)
	GetByPhone(ctx context.Context, user shared.UserContext, kind Kind, phone string) (*Party, error)

	List(ctx context.Context, user shared.UserContext, kind Kind, limit, offset int) ([]*Party, error)
	Count(ctx context.Context, user shared.UserContext, kind Kind) (int64, error)

	// ListAll returns every active party of a kind without pagination, for
	// the batch reconciliation walk.
	ListAll(ctx context.Context, user shared.UserContext, kind Kind) ([]*Party, error)

	// ApplyDelta increments the aggregate fields on both copies. The write
	// must be an increment, not a read-modify-write, so concurrent deltas
	// merge additively. A non-empty activity date also advances
	// last_activity_date.
	ApplyDelta(ctx context.Context, user shared.UserContext, partyID uuid.UUID, d entry.Delta, activity civildate.Date) error

	// OverwriteTotals sets the aggregate fields absolutely on both copies.
	// Reconciliation only; racing this against live deltas loses updates.
	OverwriteTotals(ctx context.Context, user shared.UserContext, partyID uuid.UUID, t entry.Totals) error

	MarkDeleted(ctx context.Context, user shared.UserContext, partyID uuid.UUID, deletedAt time.Time) error
	MarkRestored(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error

	// Purge physically removes both copies. Child entries must already be
	// gone; the cascade deletes children before the parent.
	Purge(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error

	ListDeleted(ctx context.Context, user shared.UserContext) ([]*Party, error)
	ListDeletedBefore(ctx context.Context, user shared.UserContext, cutoff time.Time) ([]*Party, error)
}

// ErrPartyNotFound indicates a missing (possibly purged) party.
type ErrPartyNotFound struct {
	PartyID uuid.UUID
}

func (e ErrPartyNotFound) Error() string {
	return "party not found: " + e.PartyID.String()
}

// Is matches any ErrPartyNotFound when the target carries a nil ID,
// otherwise matches on the party ID.
func (e ErrPartyNotFound) Is(target error) bool {
	t, ok := target.(ErrPartyNotFound)
	if !ok {
		return false
	}
	if t.PartyID == uuid.Nil {
		return true
	}
	return e.PartyID == t.PartyID
}

// ErrDuplicatePhone indicates a phone number already registered for another
// party of the same kind.
type ErrDuplicatePhone struct {
	Phone string
}

func (e ErrDuplicatePhone) Error() string {
	return "party with phone number already exists: " + e.Phone
}
