package party

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyName       = errors.New("party name cannot be empty")
	ErrInvalidKind     = errors.New("invalid party kind")
	ErrKindMismatch    = errors.New("entry kind is not allowed for this party kind")
	ErrPartyDeleted    = errors.New("party is in the recycle bin")
	ErrPartyNotDeleted = errors.New("party is not in the recycle bin")
)

// Kind classifies the owner of a ledger.
type Kind string

const (
	KindCustomer        Kind = "customer"
	KindSupplier        Kind = "supplier"
	KindExpenseCategory Kind = "expense_category"
)

// IsValid reports whether k is a supported party kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindCustomer, KindSupplier, KindExpenseCategory:
		return true
	}
	return false
}

// AllowsEntryKind reports which transaction kinds a party of this kind
// accepts. Customers trade in sales and payments, suppliers in purchases
// and payments. Expense categories only record expenses; they have no
// credit side.
func (k Kind) AllowsEntryKind(ek entry.Kind) bool {
	switch k {
	case KindCustomer:
		return ek == entry.KindSale || ek == entry.KindPayment
	case KindSupplier:
		return ek == entry.KindPurchase || ek == entry.KindPayment
	case KindExpenseCategory:
		return ek == entry.KindExpense
	}
	return false
}

// Party is a customer, supplier, or expense category owning a ledger.
//
// TotalBalance, TotalDebit, and TotalCredit are denormalized aggregates
// maintained incrementally on entry create/delete/restore. The intended
// invariant TotalBalance == TotalDebit - TotalCredit over active entries is
// only approximate: it drifts on edits and partial failures, and is forced
// back into agreement by recalculation. For customers the debit counter is
// total sales and the credit counter total received; for suppliers,
// purchases and paid; expense categories use only the debit counter.
//
// Every party exists as two physical documents, a root copy and a
// user-scoped copy. The repository contract is that balance-mutating
// operations write both.
type Party struct {
	ID               uuid.UUID      `json:"id" bson:"_id"`
	UserID           uuid.UUID      `json:"user_id" bson:"user_id"`
	Kind             Kind           `json:"kind" bson:"kind"`
	Name             string         `json:"name" bson:"name"`
	Phone            string         `json:"phone,omitempty" bson:"phone,omitempty"`
	TotalBalance     int64          `json:"total_balance" bson:"total_balance"`
	TotalDebit       int64          `json:"total_debit" bson:"total_debit"`
	TotalCredit      int64          `json:"total_credit" bson:"total_credit"`
	LastActivityDate civildate.Date `json:"last_activity_date,omitempty" bson:"last_activity_date,omitempty"`
	IsDeleted        bool           `json:"is_deleted" bson:"is_deleted"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}

// New creates a party with zeroed aggregates.
func New(user shared.UserContext, kind Kind, name, phone string) (*Party, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}

	now := time.Now()
	return &Party{
		ID:        uuid.New(),
		UserID:    user.UserID,
		Kind:      kind,
		Name:      name,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Totals returns the stored aggregate as an entry.Totals.
func (p *Party) Totals() entry.Totals {
	return entry.Totals{Balance: p.TotalBalance, Debit: p.TotalDebit, Credit: p.TotalCredit}
}
