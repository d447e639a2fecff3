package entry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// Repository manages ledger entry persistence. Implementations must scope
// every operation to the calling user and must never return purged rows
// (they no longer exist). "Active" listings exclude soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, user shared.UserContext, entryID uuid.UUID) (*Entry, error)

	// ListByParty returns a newest-first page of active entries, sorted by
	// date with creation time as tie-break.
	ListByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (int64, error)

	// ListAllByParty returns every active entry ascending by date. Used by
	// reconciliation, bad-debt aging, and range export, which all need the
	// full unpaginated list.
	ListAllByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) ([]*Entry, error)

	// ListByDateRange returns every active entry for the user dated within
	// [from, to] inclusive, ascending by date, across all parties. Feeds the
	// period profit summary.
	ListByDateRange(ctx context.Context, user shared.UserContext, from, to civildate.Date) ([]*Entry, error)

	Update(ctx context.Context, e *Entry) error

	MarkDeleted(ctx context.Context, user shared.UserContext, entryID uuid.UUID, deletedAt time.Time) error
	MarkRestored(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error
	Purge(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error

	// PurgeByParty physically removes every entry of a party, deleted or
	// not. Part of the parent purge cascade; runs before the parent rows go.
	PurgeByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error

	ListDeleted(ctx context.Context, user shared.UserContext) ([]*Entry, error)
	ListDeletedBefore(ctx context.Context, user shared.UserContext, cutoff time.Time) ([]*Entry, error)
}

// ErrEntryNotFound indicates a missing (possibly purged) ledger entry.
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.EntryID.String()
}

// Is matches any ErrEntryNotFound when the target carries a nil ID,
// otherwise matches on the entry ID.
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
