package entry

import "github.com/shopbook-ledger/internal/civildate"

// RangeExport is the computed input for a rendered ledger report: rows in
// the requested window with forward running balances, bracketed by the
// balance carried into and out of the window.
type RangeExport struct {
	OpeningBalance int64                `json:"opening_balance"`
	ClosingBalance int64                `json:"closing_balance"`
	Rows           []WithRunningBalance `json:"rows"`
	TotalDebit     int64                `json:"total_debit"`
	TotalCredit    int64                `json:"total_credit"`
}

// ExportRange folds a party's full entry list (ascending by date) into a
// report for [from, to]. The opening balance is the fold of every entry
// dated before from; each row's running balance then accumulates forward.
// Deleted entries never contribute.
func ExportRange(ascending []*Entry, from, to civildate.Date) RangeExport {
	var export RangeExport

	running := int64(0)
	for _, e := range ascending {
		if e.IsDeleted {
			continue
		}
		d := e.SignedDelta()
		if e.Date.Before(from) {
			export.OpeningBalance += d.Balance
			continue
		}
		if e.Date.After(to) {
			continue
		}
		running += d.Balance
		export.Rows = append(export.Rows, WithRunningBalance{
			Entry:          e,
			RunningBalance: export.OpeningBalance + running,
		})
		export.TotalDebit += d.Debit
		export.TotalCredit += d.Credit
	}

	export.ClosingBalance = export.OpeningBalance + running
	return export
}
