package aggregate

import (
	"testing"
	"time"

	"github.com/agencyops/salesboard/internal/sales/domain"
)

func day(d int, hour int) time.Time {
	return time.Date(2024, 6, d, hour, 0, 0, 0, time.UTC)
}

func weekWindow() domain.TimeWindow {
	return domain.TimeWindow{
		Start: day(10, 0),
		End:   time.Date(2024, 6, 16, 23, 59, 59, 0, time.UTC),
	}
}

func TestBuildRanksByPremiumNotCount(t *testing.T) {
	events := []domain.SaleEvent{
		{Timestamp: day(10, 9), Salesperson: "Alice", Premium: 3000},
		{Timestamp: day(11, 9), Salesperson: "Alice", Premium: 4000},
		{Timestamp: day(12, 9), Salesperson: "Bob", Premium: 8000},
	}

	rows := Build(events, weekWindow(), nil, 0)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Bob" || rows[0].Entry.PremiumTotal != 8000 || rows[0].Entry.AppCount != 1 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Name != "Alice" || rows[1].Entry.PremiumTotal != 7000 || rows[1].Entry.AppCount != 2 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestBuildIgnoresEventsOutsideWindow(t *testing.T) {
	events := []domain.SaleEvent{
		{Timestamp: day(9, 23), Salesperson: "Alice", Premium: 5000},
		{Timestamp: day(10, 0), Salesperson: "Bob", Premium: 100},
	}

	rows := Build(events, weekWindow(), nil, 0)
	if len(rows) != 1 || rows[0].Name != "Bob" {
		t.Fatalf("expected only Bob, got %+v", rows)
	}
}

func TestBuildTieKeepsFirstSaleFirst(t *testing.T) {
	events := []domain.SaleEvent{
		{Timestamp: day(10, 9), Salesperson: "Carol", Premium: 1000},
		{Timestamp: day(10, 10), Salesperson: "Dave", Premium: 1000},
	}

	rows := Build(events, weekWindow(), nil, 0)
	if rows[0].Name != "Carol" || rows[1].Name != "Dave" {
		t.Fatalf("tie order broken: %+v", rows)
	}
}

func TestBuildAppendsLookbackFillers(t *testing.T) {
	lb := domain.TimeWindow{Start: day(1, 0), End: day(12, 12)}
	events := []domain.SaleEvent{
		{Timestamp: day(11, 9), Salesperson: "Alice", Premium: 2000},
		// Active last week only.
		{Timestamp: day(5, 9), Salesperson: "Zed", Premium: 900},
		{Timestamp: day(7, 9), Salesperson: "Bob", Premium: 500},
		{Timestamp: day(7, 9), Salesperson: "Ann", Premium: 100},
	}

	rows := Build(events, weekWindow(), &lb, 0)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Name != "Alice" {
		t.Fatalf("expected Alice first, got %+v", rows[0])
	}
	// Fillers come after sellers: most recent activity first, alphabetical tie.
	if rows[1].Name != "Ann" || rows[2].Name != "Bob" || rows[3].Name != "Zed" {
		t.Fatalf("unexpected filler order: %+v", rows)
	}
	for _, row := range rows[1:] {
		if row.Entry.PremiumTotal != 0 || row.Entry.AppCount != 0 {
			t.Fatalf("filler row should be zero: %+v", row)
		}
	}
}

func TestBuildCapsAtMaxEntries(t *testing.T) {
	lb := domain.TimeWindow{Start: day(1, 0), End: day(12, 12)}
	events := []domain.SaleEvent{
		{Timestamp: day(11, 9), Salesperson: "Seller", Premium: 2000},
	}
	for i := 0; i < 30; i++ {
		events = append(events, domain.SaleEvent{
			Timestamp:   day(5, i%24),
			Salesperson: string(rune('A'+i%26)) + "-filler",
			Premium:     100,
		})
	}

	rows := Build(events, weekWindow(), &lb, 0)
	if len(rows) > DefaultEntryCeiling {
		t.Fatalf("board exceeds ceiling: %d rows", len(rows))
	}
	if rows[0].Name != "Seller" {
		t.Fatalf("seller should outrank fillers, got %+v", rows[0])
	}
}

func TestBuildEmptyInput(t *testing.T) {
	rows := Build(nil, weekWindow(), nil, 0)
	if len(rows) != 0 {
		t.Fatalf("expected empty board, got %+v", rows)
	}
}

func TestTotals(t *testing.T) {
	events := []domain.SaleEvent{
		{Timestamp: day(10, 9), Salesperson: "Alice", Premium: 1200},
		{Timestamp: day(11, 9), Salesperson: "Alice", Premium: 800},
		{Timestamp: day(9, 9), Salesperson: "Alice", Premium: 9999},
		{Timestamp: day(12, 9), Salesperson: "Bob", Premium: 0},
	}

	totals := Totals(events, weekWindow())
	if got := totals["Alice"]; got.PremiumTotal != 2000 || got.AppCount != 2 {
		t.Fatalf("alice totals: %+v", got)
	}
	if got := totals["Bob"]; got.PremiumTotal != 0 || got.AppCount != 1 {
		t.Fatalf("bob totals: %+v", got)
	}
}
