package entry

import (
	"testing"

	"github.com/shopbook-ledger/internal/civildate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRange(t *testing.T) {
	ascending := []*Entry{
		{Kind: KindSale, Amount: 1000, Date: civildate.Date("2026-01-10")},
		{Kind: KindPayment, Amount: 400, Date: civildate.Date("2026-02-05")},
		{Kind: KindSale, Amount: 250, Date: civildate.Date("2026-03-01")},
		{Kind: KindPayment, Amount: 100, Date: civildate.Date("2026-03-15")},
		{Kind: KindSale, Amount: 500, Date: civildate.Date("2026-04-20")},
	}

	t.Run("WindowInTheMiddle", func(t *testing.T) {
		export := ExportRange(ascending, civildate.Date("2026-03-01"), civildate.Date("2026-03-31"))

		assert.Equal(t, int64(600), export.OpeningBalance, "entries before the window fold into the opening balance")
		require.Len(t, export.Rows, 2)
		assert.Equal(t, int64(850), export.Rows[0].RunningBalance)
		assert.Equal(t, int64(750), export.Rows[1].RunningBalance)
		assert.Equal(t, int64(750), export.ClosingBalance)
		assert.Equal(t, int64(250), export.TotalDebit)
		assert.Equal(t, int64(100), export.TotalCredit)
	})

	t.Run("WindowCoversEverything", func(t *testing.T) {
		export := ExportRange(ascending, civildate.Date("2026-01-01"), civildate.Date("2026-12-31"))

		assert.Zero(t, export.OpeningBalance)
		assert.Len(t, export.Rows, 5)
		assert.Equal(t, Fold(ascending).Balance, export.ClosingBalance)
	})

	t.Run("EmptyWindowCarriesBalanceThrough", func(t *testing.T) {
		export := ExportRange(ascending, civildate.Date("2026-05-01"), civildate.Date("2026-05-31"))

		assert.Empty(t, export.Rows)
		assert.Equal(t, int64(1250), export.OpeningBalance)
		assert.Equal(t, export.OpeningBalance, export.ClosingBalance)
		assert.Zero(t, export.TotalDebit)
		assert.Zero(t, export.TotalCredit)
	})

	t.Run("BoundariesAreInclusive", func(t *testing.T) {
		export := ExportRange(ascending, civildate.Date("2026-01-10"), civildate.Date("2026-04-20"))
		assert.Len(t, export.Rows, 5)
	})

	t.Run("DeletedEntriesNeverContribute", func(t *testing.T) {
		withDeleted := append([]*Entry{
			{Kind: KindSale, Amount: 9999, Date: civildate.Date("2026-01-05"), IsDeleted: true},
		}, ascending...)

		export := ExportRange(withDeleted, civildate.Date("2026-03-01"), civildate.Date("2026-03-31"))
		assert.Equal(t, int64(600), export.OpeningBalance)
	})
}
