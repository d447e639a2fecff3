package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/product"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// passthroughTxnRunner executes the callback directly so mock repositories
// observe the calls made inside the transaction.
type passthroughTxnRunner struct{}

func (passthroughTxnRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByID(ctx context.Context, user shared.UserContext, entryID uuid.UUID) (*entry.Entry, error) {
	args := m.Called(ctx, user, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID, limit, offset int) ([]*entry.Entry, error) {
	args := m.Called(ctx, user, partyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) CountByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, user, partyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) ListAllByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) ([]*entry.Entry, error) {
	args := m.Called(ctx, user, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByDateRange(ctx context.Context, user shared.UserContext, from, to civildate.Date) ([]*entry.Entry, error) {
	args := m.Called(ctx, user, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkDeleted(ctx context.Context, user shared.UserContext, entryID uuid.UUID, deletedAt time.Time) error {
	args := m.Called(ctx, user, entryID, deletedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkRestored(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	args := m.Called(ctx, user, entryID)
	return args.Error(0)
}

func (m *MockEntryRepository) Purge(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	args := m.Called(ctx, user, entryID)
	return args.Error(0)
}

func (m *MockEntryRepository) PurgeByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	args := m.Called(ctx, user, partyID)
	return args.Error(0)
}

func (m *MockEntryRepository) ListDeleted(ctx context.Context, user shared.UserContext) ([]*entry.Entry, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListDeletedBefore(ctx context.Context, user shared.UserContext, cutoff time.Time) ([]*entry.Entry, error) {
	args := m.Called(ctx, user, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) Create(ctx context.Context, p *party.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartyRepository) GetByID(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, user, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) GetByPhone(ctx context.Context, user shared.UserContext, kind party.Kind, phone string) (*party.Party, error) {
	args := m.Called(ctx, user, kind, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) List(ctx context.Context, user shared.UserContext, kind party.Kind, limit, offset int) ([]*party.Party, error) {
	args := m.Called(ctx, user, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

func (m *MockPartyRepository) Count(ctx context.Context, user shared.UserContext, kind party.Kind) (int64, error) {
	args := m.Called(ctx, user, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartyRepository) ListAll(ctx context.Context, user shared.UserContext, kind party.Kind) ([]*party.Party, error) {
	args := m.Called(ctx, user, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

func (m *MockPartyRepository) ApplyDelta(ctx context.Context, user shared.UserContext, partyID uuid.UUID, d entry.Delta, activity civildate.Date) error {
	args := m.Called(ctx, user, partyID, d, activity)
	return args.Error(0)
}

func (m *MockPartyRepository) OverwriteTotals(ctx context.Context, user shared.UserContext, partyID uuid.UUID, t entry.Totals) error {
	args := m.Called(ctx, user, partyID, t)
	return args.Error(0)
}

func (m *MockPartyRepository) MarkDeleted(ctx context.Context, user shared.UserContext, partyID uuid.UUID, deletedAt time.Time) error {
	args := m.Called(ctx, user, partyID, deletedAt)
	return args.Error(0)
}

func (m *MockPartyRepository) MarkRestored(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	args := m.Called(ctx, user, partyID)
	return args.Error(0)
}

func (m *MockPartyRepository) Purge(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	args := m.Called(ctx, user, partyID)
	return args.Error(0)
}

func (m *MockPartyRepository) ListDeleted(ctx context.Context, user shared.UserContext) ([]*party.Party, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

func (m *MockPartyRepository) ListDeletedBefore(ctx context.Context, user shared.UserContext, cutoff time.Time) ([]*party.Party, error) {
	args := m.Called(ctx, user, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, user shared.UserContext, productID uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, user, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, user shared.UserContext, limit, offset int) ([]*product.Product, error) {
	args := m.Called(ctx, user, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepository) AdjustQuantity(ctx context.Context, user shared.UserContext, productID uuid.UUID, delta int64) error {
	args := m.Called(ctx, user, productID, delta)
	return args.Error(0)
}
