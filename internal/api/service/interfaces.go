package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// LedgerService defines the balance-affecting entry operations. Every
// mutation that touches an aggregate is submitted as one atomic
// multi-document batch: the entry write, the aggregate delta on both party
// copies, and any inventory adjustment commit or abort together.
type LedgerService interface {
	// AddEntry validates a draft against its owning party and applies it:
	// entry insert, aggregate delta, inventory decrement for itemized sales.
	AddEntry(ctx context.Context, user shared.UserContext, draft entry.Draft) (*entry.Entry, error)

	// EditEntry rewrites amount/date/items. Kind is immutable. The owning
	// party's aggregates are NOT adjusted; recalculation repairs the drift.
	EditEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID, patch entry.Patch) (*entry.Entry, error)

	// DeleteEntry soft-deletes and reverses the entry's balance contribution.
	DeleteEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error

	// RestoreEntry re-applies a deleted entry's balance contribution.
	RestoreEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error

	// PurgeEntry physically removes an already-deleted entry. Irreversible.
	PurgeEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error

	// ListEntries returns a newest-first page decorated with running
	// balances anchored at the party's current aggregate, plus the total
	// count of active entries.
	ListEntries(ctx context.Context, user shared.UserContext, partyID uuid.UUID, page, perPage int) ([]entry.WithRunningBalance, int64, error)

	// ExportRange computes the rows and totals a rendered ledger report
	// needs for [from, to], including the balance carried into the window.
	ExportRange(ctx context.Context, user shared.UserContext, partyID uuid.UUID, from, to civildate.Date) (*entry.RangeExport, error)

	// BadDebt ages the party's receivable over its full entry list.
	BadDebt(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*entry.BadDebtReport, error)

	// ProfitSummary derives gross profit for [from, to] across all parties,
	// falling back to sales minus purchases when no in-range sale carries
	// line items.
	ProfitSummary(ctx context.Context, user shared.UserContext, from, to civildate.Date) (*entry.ProfitSummary, error)
}

// PartyService defines customer/supplier/expense-category operations.
type PartyService interface {
	// CreateParty creates a party with zeroed aggregates.
	// Returns ErrDuplicatePhone if the phone is already registered.
	CreateParty(ctx context.Context, user shared.UserContext, kind party.Kind, name, phone string) (*party.Party, error)

	// GetParty retrieves a party by its ID.
	// Returns ErrPartyNotFound if the party doesn't exist.
	GetParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*party.Party, error)

	// ListParties returns a page of active parties of a kind plus the total count.
	ListParties(ctx context.Context, user shared.UserContext, kind party.Kind, page, perPage int) ([]*party.Party, int64, error)

	// DeleteParty moves the party to the recycle bin. Its entries keep their
	// deletion state and surface again on restore.
	DeleteParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error

	// RestoreParty returns a deleted party to the active set.
	RestoreParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error

	// PurgeParty physically removes the party and cascades to all of its
	// entries, children first, so no orphans survive a partial failure.
	PurgeParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error
}

// RecycleBin is the combined recycle-bin view: deleted parents and deleted
// entries are distinct row types; entry rows carry their denormalized party
// name for display without a join.
type RecycleBin struct {
	Parties []*party.Party `json:"parties"`
	Entries []*entry.Entry `json:"entries"`
}

// RecycleService manages the recycle bin and its age-based purge policy.
type RecycleService interface {
	// ListBin opportunistically sweeps rows past the retention window, then
	// returns what remains in the bin.
	ListBin(ctx context.Context, user shared.UserContext) (*RecycleBin, error)

	// EmptyBin permanently purges everything in the bin.
	EmptyBin(ctx context.Context, user shared.UserContext) error
}

// PartyFailure records one party the batch walk could not recalculate.
type PartyFailure struct {
	PartyID uuid.UUID `json:"party_id"`
	Name    string    `json:"name"`
	Error   string    `json:"error"`
}

// BatchReport summarizes a best-effort batch recalculation run.
type BatchReport struct {
	Processed int            `json:"processed"`
	Drifted   int            `json:"drifted"`
	Failures  []PartyFailure `json:"failures,omitempty"`
}

// ReconcileService recomputes aggregates from entries, the authoritative
// repair for drift caused by edits and partial writes. Callers should not
// run it concurrently with live data entry: its overwrite-style write can
// lose a racing increment.
type ReconcileService interface {
	// Recalculate refolds every active entry of the party and overwrites
	// the stored aggregate on every physical copy. Idempotent.
	Recalculate(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (entry.Totals, error)

	// RecalculateAll walks all customers, then suppliers, then expense
	// categories. One party's failure never aborts the batch.
	RecalculateAll(ctx context.Context, user shared.UserContext) (*BatchReport, error)
}
