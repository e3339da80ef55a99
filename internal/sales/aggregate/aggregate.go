package aggregate

import (
	"sort"
	"time"

	"github.com/agencyops/salesboard/internal/sales/domain"
)

// DefaultEntryCeiling caps how many rows a board may hold, fillers included.
const DefaultEntryCeiling = 20

// Build folds events inside the display window into ranked rows.
//
// When lookback is non-nil (weekly boards), salespeople with any activity in
// the lookback interval but no qualifying in-window sale are appended as
// zero rows so they stay visible, until the board reaches maxEntries. Filler
// order is deterministic: most recent lookback activity first, ties broken
// alphabetically.
//
// The final board is sorted by premium descending with a stable sort, so
// equal totals keep first-sale-first order, then truncated to maxEntries.
func Build(events []domain.SaleEvent, window domain.TimeWindow, lookback *domain.TimeWindow, maxEntries int) []domain.Row {
	if maxEntries <= 0 {
		maxEntries = DefaultEntryCeiling
	}

	rows := make([]domain.Row, 0, maxEntries)
	index := make(map[string]int)
	for _, ev := range events {
		if !window.Contains(ev.Timestamp) {
			continue
		}
		i, ok := index[ev.Salesperson]
		if !ok {
			index[ev.Salesperson] = len(rows)
			rows = append(rows, domain.Row{Name: ev.Salesperson})
			i = len(rows) - 1
		}
		rows[i].Entry.PremiumTotal += ev.Premium
		rows[i].Entry.AppCount++
	}

	if lookback != nil {
		for _, name := range fillerOrder(events, *lookback, index) {
			if len(rows) >= maxEntries {
				break
			}
			index[name] = len(rows)
			rows = append(rows, domain.Row{Name: name})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Entry.PremiumTotal > rows[j].Entry.PremiumTotal
	})
	if len(rows) > maxEntries {
		rows = rows[:maxEntries]
	}
	return rows
}

// fillerOrder lists lookback-active names absent from the board, most
// recent activity first, alphabetical on ties.
func fillerOrder(events []domain.SaleEvent, lookback domain.TimeWindow, onBoard map[string]int) []string {
	latest := make(map[string]time.Time)
	for _, ev := range events {
		if !lookback.Contains(ev.Timestamp) {
			continue
		}
		if _, ok := onBoard[ev.Salesperson]; ok {
			continue
		}
		if prev, ok := latest[ev.Salesperson]; !ok || ev.Timestamp.After(prev) {
			latest[ev.Salesperson] = ev.Timestamp
		}
	}

	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := latest[names[i]], latest[names[j]]
		if !a.Equal(b) {
			return a.After(b)
		}
		return names[i] < names[j]
	})
	return names
}

// Totals folds in-window events into a per-name map, the shape the per-sale
// notification path wants for its week-to-date line.
func Totals(events []domain.SaleEvent, window domain.TimeWindow) map[string]domain.LeaderboardEntry {
	totals := make(map[string]domain.LeaderboardEntry)
	for _, ev := range events {
		if !window.Contains(ev.Timestamp) {
			continue
		}
		entry := totals[ev.Salesperson]
		entry.PremiumTotal += ev.Premium
		entry.AppCount++
		totals[ev.Salesperson] = entry
	}
	return totals
}
