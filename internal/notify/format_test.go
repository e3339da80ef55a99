package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/sales/domain"
)

func testBoard(tf domain.Timeframe, rows []domain.Row) domain.Board {
	total := 0.0
	for _, r := range rows {
		total += r.Entry.PremiumTotal
	}
	return domain.Board{
		Timeframe: tf,
		Window: domain.TimeWindow{
			Start: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 6, 16, 23, 59, 59, 0, time.UTC),
		},
		Rows:        rows,
		TeamTotal:   total,
		GeneratedAt: time.Date(2024, 6, 12, 19, 0, 0, 0, time.UTC),
	}
}

func row(name string, premium float64, apps int) domain.Row {
	return domain.Row{Name: name, Entry: domain.LeaderboardEntry{PremiumTotal: premium, AppCount: apps}}
}

func TestClassifyTierBoundaries(t *testing.T) {
	tiers := config.DefaultTierConfig().Weekly

	cases := []struct {
		premium float64
		want    string
	}{
		{25000, "20K CLUB"},
		{20000, "20K CLUB"},
		{19999.99, "10K CLUB"},
		{10000, "10K CLUB"},
		{5000, "5K CLUB"},
		{4999.99, "DBAB"},
		{0.01, "DBAB"},
		{0, "SLACKERS"},
	}
	for _, tc := range cases {
		if got := ClassifyTier(tiers, tc.premium).Label; got != tc.want {
			t.Fatalf("premium %v: got %q, want %q", tc.premium, got, tc.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12345.6, "12,345.60"},
		{0, "0.00"},
		{999.999, "1,000.00"},
		{1234567.89, "1,234,567.89"},
		{-4500, "-4,500.00"},
	}
	for _, tc := range cases {
		if got := formatMoney(tc.in); got != tc.want {
			t.Fatalf("formatMoney(%v): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLeaderboardEmbedTiersAndMedals(t *testing.T) {
	board := testBoard(domain.TimeframeWeekly, []domain.Row{
		row("Alice", 21000, 5),
		row("Bob", 12000, 3),
		row("Carol", 6000, 2),
		row("Dave", 500, 1),
		row("Eve", 0, 0),
	})

	embed, ok := LeaderboardEmbed(board, config.DefaultTierConfig(), 25)
	if !ok {
		t.Fatal("expected a renderable embed")
	}
	if embed.Title != "🏆 Weekly Sales Leaderboard 🏆" {
		t.Fatalf("title: %q", embed.Title)
	}
	if embed.Description != "Sales from Jun 10, 2024 to Jun 16, 2024" {
		t.Fatalf("description: %q", embed.Description)
	}
	if !strings.Contains(embed.Footer, "Total Production: $39,500.00") {
		t.Fatalf("footer: %q", embed.Footer)
	}

	// 5 tier headers plus 5 people.
	if len(embed.Fields) != 10 {
		t.Fatalf("expected 10 fields, got %d", len(embed.Fields))
	}
	if embed.Fields[0].Name != "--- 🚀 20K CLUB 🚀 ---" {
		t.Fatalf("first tier header: %q", embed.Fields[0].Name)
	}
	if !strings.HasPrefix(embed.Fields[1].Name, "🥇 Alice") {
		t.Fatalf("first place: %q", embed.Fields[1].Name)
	}
	if !strings.HasPrefix(embed.Fields[3].Name, "🥈 Bob") {
		t.Fatalf("second place: %q", embed.Fields[3].Name)
	}
	if !strings.HasPrefix(embed.Fields[5].Name, "🥉 Carol") {
		t.Fatalf("third place: %q", embed.Fields[5].Name)
	}
	if !strings.HasPrefix(embed.Fields[7].Name, "#4 Dave") {
		t.Fatalf("fourth place: %q", embed.Fields[7].Name)
	}
	if !strings.Contains(embed.Fields[1].Value, "Total Premium: **$21,000.00** | **5** Apps") {
		t.Fatalf("first place value: %q", embed.Fields[1].Value)
	}
	if !strings.Contains(embed.Fields[7].Value, "**1** App") {
		t.Fatalf("singular app label: %q", embed.Fields[7].Value)
	}
}

func TestLeaderboardEmbedFieldCap(t *testing.T) {
	rows := make([]domain.Row, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, row("Agent"+strings.Repeat("x", i%5), 6000, 1))
	}
	board := testBoard(domain.TimeframeWeekly, rows)

	embed, ok := LeaderboardEmbed(board, config.DefaultTierConfig(), 25)
	if !ok {
		t.Fatal("expected a renderable embed")
	}
	if len(embed.Fields) > 25 {
		t.Fatalf("field cap exceeded: %d", len(embed.Fields))
	}
}

func TestLeaderboardEmbedMonthly(t *testing.T) {
	board := testBoard(domain.TimeframeMonthly, []domain.Row{
		row("Alice", 42000, 8),
	})

	embed, ok := LeaderboardEmbed(board, config.DefaultTierConfig(), 25)
	if !ok {
		t.Fatal("expected a renderable embed")
	}
	if embed.Title != "📈 Monthly Sales Leaderboard 📈" {
		t.Fatalf("title: %q", embed.Title)
	}
	if embed.Fields[0].Name != "--- 🚀 40K CLUB 🚀 ---" {
		t.Fatalf("tier header: %q", embed.Fields[0].Name)
	}
}

func TestLeaderboardEmbedEmptyBoard(t *testing.T) {
	board := testBoard(domain.TimeframeWeekly, nil)
	if _, ok := LeaderboardEmbed(board, config.DefaultTierConfig(), 25); ok {
		t.Fatal("empty board must not render")
	}
}

func TestNewSaleMessage(t *testing.T) {
	emoji := EmojiConfig{Alarm: ":rotating_light:", GSD: ":gsd:"}
	d := SaleDetails{
		Name:             "Alice",
		SaleType:         "Final Expense",
		Premium:          "1,200.00",
		Carrier:          "Acme Mutual",
		LeadType:         "Facebook",
		LeadAge:          "3 days",
		AppointmentsLeft: "4",
	}

	msg := NewSaleMessage(d, false, 3200, emoji)
	for _, want := range []string{
		":rotating_light: **New Sale!** :rotating_light:",
		"Alice just made a sale!",
		"**Sale Type:** Final Expense",
		"**Annual Premium:** $1,200.00",
		"**Carrier:** Acme Mutual",
		"**Lead Type:** Facebook",
		"**Lead Age:** 3 days",
		"**Appointments Left ➔** 4",
		"**Week to Date Sales:** $3,200.00",
		":gsd:",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Field/Telesale") || strings.Contains(msg, "Draft Date") {
		t.Fatalf("optional lines must be omitted when blank:\n%s", msg)
	}
}

func TestNewSaleMessageFirstSale(t *testing.T) {
	emoji := EmojiConfig{Alarm: ":a:", GSD: ":g:"}
	d := SaleDetails{Name: "Bob", FieldOrTelesale: "Telesale", DraftDate: "6/14"}

	msg := NewSaleMessage(d, true, 0, emoji)
	for _, want := range []string{
		"🎉🎉:a: **First Sale Alert!** :a:🎉🎉",
		"Congratulations to **Bob** on making their very first sale!",
		"**Sale Type:** N/A",
		"**Field/Telesale:** Telesale",
		"**Draft Date:** 6/14",
		"Welcome to the scoreboard! :g:",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestEmptyBoardMessage(t *testing.T) {
	if got := EmptyBoardMessage(domain.TimeframeWeekly); got != "No sales recorded yet this week." {
		t.Fatalf("weekly: %q", got)
	}
	if got := EmptyBoardMessage(domain.TimeframeMonthly); got != "No sales recorded yet this month." {
		t.Fatalf("monthly: %q", got)
	}
}
