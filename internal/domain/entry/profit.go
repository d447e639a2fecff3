package entry

import "github.com/shopbook-ledger/internal/civildate"

// ProfitSummary is the gross profit for a date range across every party.
// When no entry in the range carries line items the per-entry profit is
// meaningless (older ledgers were recorded as bare amounts), so the summary
// falls back to sales minus purchases and flags the change of mode.
type ProfitSummary struct {
	From           civildate.Date `json:"from"`
	To             civildate.Date `json:"to"`
	Profit         int64          `json:"profit"`
	TotalSales     int64          `json:"total_sales"`
	TotalPurchases int64          `json:"total_purchases"`
	LegacyMode     bool           `json:"legacy_mode"`
}

// ComputeProfitSummary derives the profit for [from, to] inclusive. If at
// least one in-range sale carries line items, profit is the sum of recorded
// per-entry profits; otherwise it is totalSales - totalPurchases.
// Deleted entries never contribute.
func ComputeProfitSummary(entries []*Entry, from, to civildate.Date) ProfitSummary {
	summary := ProfitSummary{From: from, To: to}

	itemized := false
	itemProfit := int64(0)
	for _, e := range entries {
		if e.IsDeleted || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		switch e.Kind {
		case KindSale:
			summary.TotalSales += e.Amount
			if len(e.LineItems) > 0 {
				itemized = true
			}
			itemProfit += e.Profit
		case KindPurchase:
			summary.TotalPurchases += e.Amount
		}
	}

	if itemized {
		summary.Profit = itemProfit
	} else {
		summary.Profit = summary.TotalSales - summary.TotalPurchases
		summary.LegacyMode = true
	}
	return summary
}
