package entry

import (
	"sort"

	"github.com/shopbook-ledger/internal/civildate"
)

// BadDebtReport describes how much of a party's receivable is unpaid and
// older than the aging threshold.
type BadDebtReport struct {
	HasBadDebt       bool            `json:"has_bad_debt"`
	BadDebtAmount    int64           `json:"bad_debt_amount"`
	OldestUnpaidDate *civildate.Date `json:"oldest_unpaid_date,omitempty"`
}

// ComputeBadDebt ages a customer's receivable by FIFO-matching the lifetime
// payment pool against sales oldest-first. The pool does not track which
// sale a payment was "for"; amounts are fungible. A sale's unpaid remainder
// counts as bad debt only when its date is strictly older than asOf minus
// agingMonths civil months. The walk continues after the pool is exhausted
// so every old unpaid sale contributes.
//
// The input must be the full, unpaginated entry list for the party; deleted
// entries are ignored.
func ComputeBadDebt(entries []*Entry, asOf civildate.Date, agingMonths int) BadDebtReport {
	threshold := asOf.AddMonths(-agingMonths)

	var pool int64
	var sales []*Entry
	for _, e := range entries {
		if e.IsDeleted {
			continue
		}
		switch e.Kind {
		case KindPayment:
			pool += e.Amount
		case KindSale:
			sales = append(sales, e)
		}
	}

	// Stable keeps input order for equal dates; amounts are fungible within
	// the pool model, so any fixed tiebreak is fine.
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date.Before(sales[j].Date)
	})

	var report BadDebtReport
	for _, sale := range sales {
		if pool >= sale.Amount {
			pool -= sale.Amount
			continue
		}
		unpaid := sale.Amount - pool
		pool = 0
		if sale.Date.Before(threshold) {
			report.BadDebtAmount += unpaid
			if report.OldestUnpaidDate == nil {
				d := sale.Date
				report.OldestUnpaidDate = &d
			}
		}
	}

	report.HasBadDebt = report.BadDebtAmount > 0
	return report
}
