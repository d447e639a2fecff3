package entry

// WithRunningBalance pairs an entry with the party's outstanding balance as
// of that entry.
type WithRunningBalance struct {
	*Entry
	RunningBalance int64 `json:"running_balance"`
}

// DecorateRunningBalance computes per-row running balances for a page of
// entries ordered newest-first, anchored at the party's current aggregate
// balance. The newest row shows the aggregate itself; each older row is
// obtained by reversing the newer row's signed effect. The walk touches only
// the displayed page, so its accuracy depends entirely on the anchor: a
// drifted aggregate offsets every row by the same error.
func DecorateRunningBalance(newestFirst []*Entry, currentBalance int64) []WithRunningBalance {
	rows := make([]WithRunningBalance, len(newestFirst))
	running := currentBalance
	for i, e := range newestFirst {
		rows[i] = WithRunningBalance{Entry: e, RunningBalance: running}
		running -= e.SignedDelta().Balance
	}
	return rows
}
