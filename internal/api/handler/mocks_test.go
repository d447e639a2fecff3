package handler

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/api/middleware"
	"github.com/shopbook-ledger/internal/api/service"
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

// setupTestRouter builds a router with the user-context middleware installed,
// the way the real router wires handlers.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.UserContext())
	return r
}

type MockPartyService struct {
	mock.Mock
}

func (m *MockPartyService) CreateParty(ctx context.Context, user shared.UserContext, kind party.Kind, name, phone string) (*party.Party, error) {
	args := m.Called(ctx, user, kind, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyService) GetParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, user, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyService) ListParties(ctx context.Context, user shared.UserContext, kind party.Kind, page, perPage int) ([]*party.Party, int64, error) {
	args := m.Called(ctx, user, kind, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*party.Party), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyService) DeleteParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	args := m.Called(ctx, user, partyID)
	return args.Error(0)
}

func (m *MockPartyService) RestoreParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	args := m.Called(ctx, user, partyID)
	return args.Error(0)
}

func (m *MockPartyService) PurgeParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	args := m.Called(ctx, user, partyID)
	return args.Error(0)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AddEntry(ctx context.Context, user shared.UserContext, draft entry.Draft) (*entry.Entry, error) {
	args := m.Called(ctx, user, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockLedgerService) EditEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID, patch entry.Patch) (*entry.Entry, error) {
	args := m.Called(ctx, user, entryID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockLedgerService) DeleteEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	args := m.Called(ctx, user, entryID)
	return args.Error(0)
}

func (m *MockLedgerService) RestoreEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	args := m.Called(ctx, user, entryID)
	return args.Error(0)
}

func (m *MockLedgerService) PurgeEntry(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	args := m.Called(ctx, user, entryID)
	return args.Error(0)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, user shared.UserContext, partyID uuid.UUID, page, perPage int) ([]entry.WithRunningBalance, int64, error) {
	args := m.Called(ctx, user, partyID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entry.WithRunningBalance), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) ExportRange(ctx context.Context, user shared.UserContext, partyID uuid.UUID, from, to civildate.Date) (*entry.RangeExport, error) {
	args := m.Called(ctx, user, partyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.RangeExport), args.Error(1)
}

func (m *MockLedgerService) BadDebt(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*entry.BadDebtReport, error) {
	args := m.Called(ctx, user, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.BadDebtReport), args.Error(1)
}

func (m *MockLedgerService) ProfitSummary(ctx context.Context, user shared.UserContext, from, to civildate.Date) (*entry.ProfitSummary, error) {
	args := m.Called(ctx, user, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.ProfitSummary), args.Error(1)
}

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Recalculate(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (entry.Totals, error) {
	args := m.Called(ctx, user, partyID)
	return args.Get(0).(entry.Totals), args.Error(1)
}

func (m *MockReconcileService) RecalculateAll(ctx context.Context, user shared.UserContext) (*service.BatchReport, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchReport), args.Error(1)
}

type MockRecycleService struct {
	mock.Mock
}

func (m *MockRecycleService) ListBin(ctx context.Context, user shared.UserContext) (*service.RecycleBin, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecycleBin), args.Error(1)
}

func (m *MockRecycleService) EmptyBin(ctx context.Context, user shared.UserContext) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, user shared.UserContext, name string, unitPrice, unitCost, quantity int64) (*product.Product, error) {
	args := m.Called(ctx, user, name, unitPrice, unitCost, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, user shared.UserContext, productID uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, user, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, user shared.UserContext, page, perPage int) ([]*product.Product, error) {
	args := m.Called(ctx, user, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}
