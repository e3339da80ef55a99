package domain

import (
	"context"
	"errors"
	"time"
)

// Timeframe selects the leaderboard window kind.
type Timeframe string

const (
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

func (t Timeframe) Valid() bool {
	return t == TimeframeWeekly || t == TimeframeMonthly
}

// SaleEvent is one normalized spreadsheet row. Immutable once built.
type SaleEvent struct {
	Timestamp   time.Time
	Salesperson string
	Premium     float64
}

// LeaderboardEntry accumulates one salesperson's totals inside a single
// aggregation run.
type LeaderboardEntry struct {
	PremiumTotal float64
	AppCount     int
}

// Row is one ranked leaderboard line.
type Row struct {
	Name  string
	Entry LeaderboardEntry
}

// TimeWindow is the interval premium totals are summed over. Bounds are
// compared closed-inclusive on both ends.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Board is a fully aggregated leaderboard ready for formatting.
type Board struct {
	Timeframe   Timeframe
	Window      TimeWindow
	Rows        []Row
	TeamTotal   float64
	GeneratedAt time.Time
}

// Empty reports whether the board carries any production at all.
func (b Board) Empty() bool {
	return len(b.Rows) == 0
}

var (
	ErrInvalidTimeframe  = errors.New("invalid_timeframe")
	ErrSourceUnavailable = errors.New("source_unavailable")
)

// Service builds and publishes leaderboards from the spreadsheet source.
type Service interface {
	Leaderboard(ctx context.Context, tf Timeframe) (Board, error)
	PostLeaderboard(ctx context.Context, channelID string, tf Timeframe) error
	WeeklyTotals(ctx context.Context) (map[string]LeaderboardEntry, error)
}
