package entry

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// Validation errors surfaced before any write reaches storage.
var (
	ErrInvalidKind      = errors.New("invalid entry kind")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDate      = errors.New("entry date must be a valid YYYY-MM-DD date")
	ErrMissingParty     = errors.New("entry requires an owning party")
	ErrAmountWithItems  = errors.New("manual amount and line items are mutually exclusive")
	ErrItemsRequireSale = errors.New("line items are only supported on sale entries")
	ErrEmptyLineItem    = errors.New("line item requires a name and a positive quantity")
	ErrKindChange       = errors.New("entry kind cannot be changed after creation")
	ErrEntryDeleted     = errors.New("entry is in the recycle bin")
	ErrEntryNotDeleted  = errors.New("entry is not in the recycle bin")
)

// Kind classifies a ledger transaction.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
	KindPayment  Kind = "payment"
	KindExpense  Kind = "expense"
)

// IsValid reports whether k is one of the supported transaction kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindSale, KindPurchase, KindPayment, KindExpense:
		return true
	}
	return false
}

// IsDebit reports whether the kind increases the owning party's outstanding
// balance. Payments are the only credit kind.
func (k Kind) IsDebit() bool {
	return k == KindSale || k == KindPurchase || k == KindExpense
}

// LineItem is one cart line of an itemized sale. Prices and costs are in
// minor currency units; LineTotal is Quantity * UnitPrice.
type LineItem struct {
	ProductID *uuid.UUID `json:"product_id,omitempty" bson:"product_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Quantity  int64      `json:"quantity" bson:"quantity"`
	UnitPrice int64      `json:"unit_price" bson:"unit_price"`
	UnitCost  int64      `json:"unit_cost" bson:"unit_cost"`
	LineTotal int64      `json:"line_total" bson:"line_total"`
}

// Entry is one transaction in a party's ledger.
//
// Amount and Profit are derived once at construction: manual entries carry
// the amount given by the user and zero profit (legacy mode), itemized sales
// carry the sum of line totals and the line-item margin. PartyName is
// denormalized onto the entry so the recycle bin can render a deleted entry
// without joining a party that may itself be deleted.
type Entry struct {
	ID        uuid.UUID      `json:"id" bson:"_id"`
	PartyID   uuid.UUID      `json:"party_id" bson:"party_id"`
	UserID    uuid.UUID      `json:"user_id" bson:"user_id"`
	PartyName string         `json:"party_name" bson:"party_name"`
	Kind      Kind           `json:"kind" bson:"kind"`
	Amount    int64          `json:"amount" bson:"amount"` // minor units
	Date      civildate.Date `json:"date" bson:"date"`
	LineItems []LineItem     `json:"line_items,omitempty" bson:"line_items,omitempty"`
	Profit    int64          `json:"profit" bson:"profit"`
	IsDeleted bool           `json:"is_deleted" bson:"is_deleted"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// Draft carries the user-supplied fields of a new entry. Amount and Items
// are mutually exclusive: a manual entry gives Amount, an itemized sale
// gives Items and derives its amount from them.
type Draft struct {
	PartyID   uuid.UUID
	PartyName string
	Kind      Kind
	Amount    int64
	Items     []LineItem
	Date      civildate.Date
}

// New validates a draft and constructs the entry, deriving amount and profit.
func New(user shared.UserContext, draft Draft) (*Entry, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if draft.PartyID == uuid.Nil {
		return nil, ErrMissingParty
	}
	if !draft.Kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if !draft.Date.IsValid() {
		return nil, ErrInvalidDate
	}

	now := time.Now()
	e := &Entry{
		ID:        uuid.New(),
		PartyID:   draft.PartyID,
		UserID:    user.UserID,
		PartyName: draft.PartyName,
		Kind:      draft.Kind,
		Date:      draft.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch {
	case len(draft.Items) > 0 && draft.Amount > 0:
		return nil, ErrAmountWithItems
	case len(draft.Items) > 0:
		if draft.Kind != KindSale {
			return nil, ErrItemsRequireSale
		}
		items, amount, profit, err := normalizeItems(draft.Items)
		if err != nil {
			return nil, err
		}
		e.LineItems = items
		e.Amount = amount
		e.Profit = profit
	case draft.Amount > 0:
		e.Amount = draft.Amount
	default:
		return nil, ErrInvalidAmount
	}

	return e, nil
}

// normalizeItems validates line items, fills derived line totals, and
// returns the entry-level amount and profit.
func normalizeItems(items []LineItem) ([]LineItem, int64, int64, error) {
	out := make([]LineItem, len(items))
	var amount, profit int64
	for i, item := range items {
		if item.Name == "" || item.Quantity <= 0 {
			return nil, 0, 0, ErrEmptyLineItem
		}
		if item.UnitPrice < 0 || item.UnitCost < 0 {
			return nil, 0, 0, ErrInvalidAmount
		}
		if item.LineTotal == 0 {
			item.LineTotal = item.Quantity * item.UnitPrice
		}
		amount += item.LineTotal
		profit += (item.UnitPrice - item.UnitCost) * item.Quantity
		out[i] = item
	}
	if amount <= 0 {
		return nil, 0, 0, ErrInvalidAmount
	}
	return out, amount, profit, nil
}

// Patch carries the editable fields of an entry. Kind is immutable; callers
// wanting a different kind delete and recreate.
type Patch struct {
	Amount *int64
	Date   *civildate.Date
	Items  []LineItem
}

// ApplyPatch mutates the entry in place. Amount and profit are re-derived
// when items are patched. The owning party's aggregates are deliberately not
// adjusted here; recalculation is the repair path for the resulting drift.
func (e *Entry) ApplyPatch(patch Patch) error {
	if len(patch.Items) > 0 {
		if e.Kind != KindSale {
			return ErrItemsRequireSale
		}
		items, amount, profit, err := normalizeItems(patch.Items)
		if err != nil {
			return err
		}
		e.LineItems = items
		e.Amount = amount
		e.Profit = profit
	} else if patch.Amount != nil {
		if *patch.Amount <= 0 {
			return ErrInvalidAmount
		}
		e.Amount = *patch.Amount
		e.LineItems = nil
		e.Profit = 0
	}

	if patch.Date != nil {
		if !patch.Date.IsValid() {
			return ErrInvalidDate
		}
		e.Date = *patch.Date
	}

	e.UpdatedAt = time.Now()
	return nil
}

// Delta is the signed contribution of one entry to a party's aggregates.
type Delta struct {
	Balance int64 // outstanding balance movement
	Debit   int64 // sales/purchases/expenses counter movement
	Credit  int64 // received/paid counter movement
}

// Negate returns the delta that reverses d.
func (d Delta) Negate() Delta {
	return Delta{Balance: -d.Balance, Debit: -d.Debit, Credit: -d.Credit}
}

// SignedDelta derives the aggregate movement for this entry: debit kinds add
// the amount to the balance and the debit counter, payments subtract from
// the balance and add to the credit counter.
func (e *Entry) SignedDelta() Delta {
	if e.Kind.IsDebit() {
		return Delta{Balance: e.Amount, Debit: e.Amount}
	}
	return Delta{Balance: -e.Amount, Credit: e.Amount}
}

// Totals is a full aggregate recomputed from entries.
type Totals struct {
	Balance int64 `json:"total_balance"`
	Debit   int64 `json:"total_debit"`
	Credit  int64 `json:"total_credit"`
}

// Fold recomputes totals from scratch over the given entries, ignoring any
// stored aggregate. Deleted entries are skipped so callers may pass either
// pre-filtered or raw lists. Order is irrelevant.
func Fold(entries []*Entry) Totals {
	var t Totals
	for _, e := range entries {
		if e.IsDeleted {
			continue
		}
		d := e.SignedDelta()
		t.Balance += d.Balance
		t.Debit += d.Debit
		t.Credit += d.Credit
	}
	return t
}
