package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	entryRepo   *MockEntryRepository
	partyRepo   *MockPartyRepository
	productRepo *MockProductRepository
	service     LedgerService
	user        shared.UserContext
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		entryRepo:   new(MockEntryRepository),
		partyRepo:   new(MockPartyRepository),
		productRepo: new(MockProductRepository),
		user:        shared.NewUserContext(uuid.New()),
	}
	f.service = NewLedgerService(testLogger(), f.entryRepo, f.partyRepo, f.productRepo, passthroughTxnRunner{}, 6)
	return f
}

func (f *ledgerFixture) activeCustomer() *party.Party {
	return &party.Party{
		ID:           uuid.New(),
		UserID:       f.user.UserID,
		Kind:         party.KindCustomer,
		Name:         "Corner Shop",
		TotalBalance: 850,
		TotalDebit:   1250,
		TotalCredit:  400,
	}
}

func TestLedgerServiceImpl_AddEntry(t *testing.T) {
	ctx := context.Background()
	date := civildate.Date("2026-08-15")

	t.Run("ManualSaleAppliesDelta", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, owner.ID, entry.Delta{Balance: 500, Debit: 500}, date).Return(nil).Once()

		e, err := f.service.AddEntry(ctx, f.user, entry.Draft{
			PartyID: owner.ID,
			Kind:    entry.KindSale,
			Amount:  500,
			Date:    date,
		})

		require.NoError(t, err)
		assert.Equal(t, owner.Name, e.PartyName, "party name is denormalized onto the entry")
		assert.Equal(t, int64(500), e.Amount)
		f.partyRepo.AssertExpectations(t)
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("PaymentSubtractsBalance", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, owner.ID, entry.Delta{Balance: -300, Credit: 300}, date).Return(nil).Once()

		_, err := f.service.AddEntry(ctx, f.user, entry.Draft{
			PartyID: owner.ID,
			Kind:    entry.KindPayment,
			Amount:  300,
			Date:    date,
		})

		require.NoError(t, err)
		f.partyRepo.AssertExpectations(t)
	})

	t.Run("ItemizedSaleConsumesInventory", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()
		productID := uuid.New()

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, owner.ID, entry.Delta{Balance: 250, Debit: 250}, date).Return(nil).Once()
		f.productRepo.On("AdjustQuantity", ctx, f.user, productID, int64(-2)).Return(nil).Once()

		e, err := f.service.AddEntry(ctx, f.user, entry.Draft{
			PartyID: owner.ID,
			Kind:    entry.KindSale,
			Date:    date,
			Items: []entry.LineItem{
				{ProductID: &productID, Name: "Sugar 1kg", Quantity: 2, UnitPrice: 100, UnitCost: 60},
				{Name: "Loose tea", Quantity: 1, UnitPrice: 50, UnitCost: 50},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(250), e.Amount)
		assert.Equal(t, int64(80), e.Profit)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("DeletedPartyRejected", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()
		owner.IsDeleted = true

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()

		_, err := f.service.AddEntry(ctx, f.user, entry.Draft{PartyID: owner.ID, Kind: entry.KindSale, Amount: 100, Date: date})

		assert.ErrorIs(t, err, party.ErrPartyDeleted)
		f.entryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("KindMismatchRejected", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()

		_, err := f.service.AddEntry(ctx, f.user, entry.Draft{PartyID: owner.ID, Kind: entry.KindPurchase, Amount: 100, Date: date})

		assert.ErrorIs(t, err, party.ErrKindMismatch)
	})

	t.Run("CreateFailureAbortsWithoutDelta", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()
		dbErr := errors.New("write conflict")

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(dbErr).Once()

		_, err := f.service.AddEntry(ctx, f.user, entry.Draft{PartyID: owner.ID, Kind: entry.KindSale, Amount: 100, Date: date})

		assert.ErrorIs(t, err, dbErr)
		f.partyRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLedgerServiceImpl_EditEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("AmountEditDoesNotTouchAggregates", func(t *testing.T) {
		f := newLedgerFixture()
		e := &entry.Entry{
			ID:      uuid.New(),
			PartyID: uuid.New(),
			UserID:  f.user.UserID,
			Kind:    entry.KindSale,
			Amount:  500,
			Date:    civildate.Date("2026-08-01"),
		}
		newAmount := int64(900)

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()
		f.entryRepo.On("Update", ctx, e).Return(nil).Once()

		updated, err := f.service.EditEntry(ctx, f.user, e.ID, entry.Patch{Amount: &newAmount})

		require.NoError(t, err)
		assert.Equal(t, int64(900), updated.Amount)
		f.partyRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.partyRepo.AssertNotCalled(t, "OverwriteTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DeletedEntryRejected", func(t *testing.T) {
		f := newLedgerFixture()
		e := &entry.Entry{ID: uuid.New(), Kind: entry.KindSale, Amount: 500, IsDeleted: true}
		newAmount := int64(900)

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()

		_, err := f.service.EditEntry(ctx, f.user, e.ID, entry.Patch{Amount: &newAmount})

		assert.ErrorIs(t, err, entry.ErrEntryDeleted)
		f.entryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newLedgerFixture()
		id := uuid.New()

		f.entryRepo.On("GetByID", ctx, f.user, id).Return(nil, entry.ErrEntryNotFound{EntryID: id}).Once()

		_, err := f.service.EditEntry(ctx, f.user, id, entry.Patch{})
		assert.ErrorIs(t, err, entry.ErrEntryNotFound{})
	})
}

func TestLedgerServiceImpl_DeleteAndRestore(t *testing.T) {
	ctx := context.Background()

	newSale := func(f *ledgerFixture) *entry.Entry {
		return &entry.Entry{
			ID:      uuid.New(),
			PartyID: uuid.New(),
			UserID:  f.user.UserID,
			Kind:    entry.KindSale,
			Amount:  500,
			Date:    civildate.Date("2026-08-01"),
		}
	}

	t.Run("DeleteReversesDelta", func(t *testing.T) {
		f := newLedgerFixture()
		e := newSale(f)

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()
		f.entryRepo.On("MarkDeleted", ctx, f.user, e.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, e.PartyID, entry.Delta{Balance: -500, Debit: -500}, civildate.Date("")).Return(nil).Once()

		err := f.service.DeleteEntry(ctx, f.user, e.ID)

		require.NoError(t, err)
		f.entryRepo.AssertExpectations(t)
		f.partyRepo.AssertExpectations(t)
	})

	t.Run("RestoreReappliesDelta", func(t *testing.T) {
		f := newLedgerFixture()
		e := newSale(f)
		e.IsDeleted = true

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()
		f.entryRepo.On("MarkRestored", ctx, f.user, e.ID).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, e.PartyID, entry.Delta{Balance: 500, Debit: 500}, civildate.Date("")).Return(nil).Once()

		err := f.service.RestoreEntry(ctx, f.user, e.ID)

		require.NoError(t, err)
		f.partyRepo.AssertExpectations(t)
	})

	t.Run("DeleteThenRestoreIsNetZero", func(t *testing.T) {
		f := newLedgerFixture()
		e := newSale(f)
		var net entry.Delta

		record := func(d entry.Delta) {
			net.Balance += d.Balance
			net.Debit += d.Debit
			net.Credit += d.Credit
		}

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil)
		f.entryRepo.On("MarkDeleted", ctx, f.user, e.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.entryRepo.On("MarkRestored", ctx, f.user, e.ID).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, e.PartyID, mock.AnythingOfType("entry.Delta"), civildate.Date("")).
			Run(func(args mock.Arguments) { record(args.Get(3).(entry.Delta)) }).
			Return(nil).Twice()

		require.NoError(t, f.service.DeleteEntry(ctx, f.user, e.ID))
		e.IsDeleted = true
		require.NoError(t, f.service.RestoreEntry(ctx, f.user, e.ID))

		assert.Equal(t, entry.Delta{}, net, "delete plus restore must cancel exactly")
	})

	t.Run("DeleteReturnsInventory", func(t *testing.T) {
		f := newLedgerFixture()
		productID := uuid.New()
		e := newSale(f)
		e.Amount = 200
		e.LineItems = []entry.LineItem{
			{ProductID: &productID, Name: "Sugar 1kg", Quantity: 2, UnitPrice: 100, UnitCost: 60, LineTotal: 200},
		}

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()
		f.entryRepo.On("MarkDeleted", ctx, f.user, e.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.partyRepo.On("ApplyDelta", ctx, f.user, e.PartyID, entry.Delta{Balance: -200, Debit: -200}, civildate.Date("")).Return(nil).Once()
		f.productRepo.On("AdjustQuantity", ctx, f.user, productID, int64(2)).Return(nil).Once()

		require.NoError(t, f.service.DeleteEntry(ctx, f.user, e.ID))
		f.productRepo.AssertExpectations(t)
	})

	t.Run("DeleteAlreadyDeleted", func(t *testing.T) {
		f := newLedgerFixture()
		e := newSale(f)
		e.IsDeleted = true

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()

		assert.ErrorIs(t, f.service.DeleteEntry(ctx, f.user, e.ID), entry.ErrEntryDeleted)
	})

	t.Run("RestoreActiveEntry", func(t *testing.T) {
		f := newLedgerFixture()
		e := newSale(f)

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()

		assert.ErrorIs(t, f.service.RestoreEntry(ctx, f.user, e.ID), entry.ErrEntryNotDeleted)
	})
}

func TestLedgerServiceImpl_PurgeEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("PurgesDeletedEntry", func(t *testing.T) {
		f := newLedgerFixture()
		e := &entry.Entry{ID: uuid.New(), Kind: entry.KindSale, Amount: 100, IsDeleted: true}

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()
		f.entryRepo.On("Purge", ctx, f.user, e.ID).Return(nil).Once()

		require.NoError(t, f.service.PurgeEntry(ctx, f.user, e.ID))
		f.partyRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ActiveEntryRejected", func(t *testing.T) {
		f := newLedgerFixture()
		e := &entry.Entry{ID: uuid.New(), Kind: entry.KindSale, Amount: 100}

		f.entryRepo.On("GetByID", ctx, f.user, e.ID).Return(e, nil).Once()

		assert.ErrorIs(t, f.service.PurgeEntry(ctx, f.user, e.ID), entry.ErrEntryNotDeleted)
		f.entryRepo.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLedgerServiceImpl_ListEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstPageAnchorsAtAggregate", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()
		page := []*entry.Entry{
			{Kind: entry.KindSale, Amount: 250, Date: civildate.Date("2026-08-20")},
			{Kind: entry.KindPayment, Amount: 400, Date: civildate.Date("2026-08-10")},
			{Kind: entry.KindSale, Amount: 1000, Date: civildate.Date("2026-08-01")},
		}

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("ListByParty", ctx, f.user, owner.ID, 20, 0).Return(page, nil).Once()
		f.entryRepo.On("CountByParty", ctx, f.user, owner.ID).Return(int64(3), nil).Once()

		rows, total, err := f.service.ListEntries(ctx, f.user, owner.ID, 1, 20)

		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, rows, 3)
		assert.Equal(t, owner.TotalBalance, rows[0].RunningBalance)
		assert.Equal(t, int64(600), rows[1].RunningBalance)
		assert.Equal(t, int64(1000), rows[2].RunningBalance)
	})

	t.Run("DeeperPageRollsTheAnchorBack", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()
		newer := []*entry.Entry{
			{Kind: entry.KindSale, Amount: 250, Date: civildate.Date("2026-08-20")},
			{Kind: entry.KindPayment, Amount: 400, Date: civildate.Date("2026-08-10")},
		}
		older := []*entry.Entry{
			{Kind: entry.KindSale, Amount: 1000, Date: civildate.Date("2026-08-01")},
		}

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("ListByParty", ctx, f.user, owner.ID, 2, 2).Return(older, nil).Once()
		f.entryRepo.On("CountByParty", ctx, f.user, owner.ID).Return(int64(3), nil).Once()
		f.entryRepo.On("ListByParty", ctx, f.user, owner.ID, 2, 0).Return(newer, nil).Once()

		rows, _, err := f.service.ListEntries(ctx, f.user, owner.ID, 2, 2)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		// 850 - 250 + 400 = 1000: continuous with the first page's last row.
		assert.Equal(t, int64(1000), rows[0].RunningBalance)
	})
}

func TestLedgerServiceImpl_ExportRange(t *testing.T) {
	ctx := context.Background()

	t.Run("InvertedRangeRejected", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.service.ExportRange(ctx, f.user, uuid.New(), civildate.Date("2026-08-31"), civildate.Date("2026-08-01"))
		assert.ErrorIs(t, err, entry.ErrInvalidDate)
	})

	t.Run("ComputesWindow", func(t *testing.T) {
		f := newLedgerFixture()
		owner := f.activeCustomer()
		all := []*entry.Entry{
			{Kind: entry.KindSale, Amount: 1000, Date: civildate.Date("2026-01-10")},
			{Kind: entry.KindPayment, Amount: 400, Date: civildate.Date("2026-02-05")},
			{Kind: entry.KindSale, Amount: 250, Date: civildate.Date("2026-03-01")},
		}

		f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
		f.entryRepo.On("ListAllByParty", ctx, f.user, owner.ID).Return(all, nil).Once()

		export, err := f.service.ExportRange(ctx, f.user, owner.ID, civildate.Date("2026-03-01"), civildate.Date("2026-03-31"))

		require.NoError(t, err)
		assert.Equal(t, int64(600), export.OpeningBalance)
		assert.Equal(t, int64(850), export.ClosingBalance)
		require.Len(t, export.Rows, 1)
	})
}

func TestLedgerServiceImpl_BadDebt(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	owner := f.activeCustomer()
	all := []*entry.Entry{
		{Kind: entry.KindSale, Amount: 1000, Date: civildate.Today().AddMonths(-8)},
		{Kind: entry.KindPayment, Amount: 300, Date: civildate.Today().AddMonths(-1)},
	}

	f.partyRepo.On("GetByID", ctx, f.user, owner.ID).Return(owner, nil).Once()
	f.entryRepo.On("ListAllByParty", ctx, f.user, owner.ID).Return(all, nil).Once()

	report, err := f.service.BadDebt(ctx, f.user, owner.ID)

	require.NoError(t, err)
	assert.True(t, report.HasBadDebt)
	assert.Equal(t, int64(700), report.BadDebtAmount)
}

func TestLedgerServiceImpl_ProfitSummary(t *testing.T) {
	ctx := context.Background()
	from := civildate.Date("2026-01-01")
	to := civildate.Date("2026-01-31")

	t.Run("InvertedRangeRejected", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.service.ProfitSummary(ctx, f.user, to, from)
		assert.ErrorIs(t, err, entry.ErrInvalidDate)
	})

	t.Run("LegacyModeFlagged", func(t *testing.T) {
		f := newLedgerFixture()
		inRange := []*entry.Entry{
			{Kind: entry.KindSale, Amount: 1000, Date: civildate.Date("2026-01-05")},
			{Kind: entry.KindPurchase, Amount: 600, Date: civildate.Date("2026-01-12")},
		}

		f.entryRepo.On("ListByDateRange", ctx, f.user, from, to).Return(inRange, nil).Once()

		summary, err := f.service.ProfitSummary(ctx, f.user, from, to)

		require.NoError(t, err)
		assert.Equal(t, int64(400), summary.Profit)
		assert.True(t, summary.LegacyMode)
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("ItemizedSalesUseRecordedProfit", func(t *testing.T) {
		f := newLedgerFixture()
		inRange := []*entry.Entry{
			{Kind: entry.KindSale, Amount: 250, Profit: 80, Date: civildate.Date("2026-01-05"),
				LineItems: []entry.LineItem{{Name: "Widget", Quantity: 2, UnitPrice: 100, UnitCost: 60}}},
		}

		f.entryRepo.On("ListByDateRange", ctx, f.user, from, to).Return(inRange, nil).Once()

		summary, err := f.service.ProfitSummary(ctx, f.user, from, to)

		require.NoError(t, err)
		assert.Equal(t, int64(80), summary.Profit)
		assert.False(t, summary.LegacyMode)
	})

	t.Run("RepositoryFailureSurfaces", func(t *testing.T) {
		f := newLedgerFixture()
		f.entryRepo.On("ListByDateRange", ctx, f.user, from, to).Return(nil, errors.New("cursor timeout")).Once()

		_, err := f.service.ProfitSummary(ctx, f.user, from, to)

		assert.Error(t, err)
	})
}
