package poller

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/notify"
	"github.com/agencyops/salesboard/internal/providers/sheets"
	"github.com/agencyops/salesboard/internal/sales/domain"
	"github.com/agencyops/salesboard/internal/sales/normalize"
)

type fakeSource struct {
	grid [][]string
	err  error
}

func (f *fakeSource) Grid(ctx context.Context) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.grid, nil
}

func (f *fakeSource) Records(ctx context.Context) ([]map[string]string, error) {
	return sheets.RecordsFromGrid(f.grid), nil
}

type fakeChat struct {
	messages []string
	err      error
}

func (f *fakeChat) PostMessage(ctx context.Context, channelID, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeChat) PostEmbed(ctx context.Context, channelID string, embed notify.Embed) error {
	return nil
}

type fakeSales struct {
	totals map[string]domain.LeaderboardEntry
	err    error
}

func (f *fakeSales) Leaderboard(ctx context.Context, tf domain.Timeframe) (domain.Board, error) {
	return domain.Board{}, nil
}

func (f *fakeSales) PostLeaderboard(ctx context.Context, channelID string, tf domain.Timeframe) error {
	return nil
}

func (f *fakeSales) WeeklyTotals(ctx context.Context) (map[string]domain.LeaderboardEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.totals, nil
}

func newTestPoller(t *testing.T, src *fakeSource, chat *fakeChat, sales *fakeSales) *Poller {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	p, err := New(Params{
		Log:        zap.NewNop(),
		Source:     src,
		Chat:       chat,
		Sales:      sales,
		Normalizer: normalize.New(time.UTC, nil, zap.NewNop()),
		GenID:      node,
		Config: config.Config{
			Columns: config.ColumnConfig{
				Timestamp: "Timestamp",
				Name:      "Name",
				Premium:   "Premium",
				SaleType:  "Sale Type",
				Carrier:   "Carrier",
				LeadAge:   "Lead Age",
				LeadType:  "Lead Type",
			},
			Discord: config.DiscordConfig{NotificationChannel: "chan", AlarmEmoji: "🚨", GSDEmoji: "💪"},
			Polling: config.PollingConfig{
				Interval:        time.Minute,
				BackoffInterval: 5 * time.Minute,
				InitialRetry:    30 * time.Second,
				CallTimeout:     5 * time.Second,
			},
		},
	})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	return p
}

func baseGrid() [][]string {
	return [][]string{
		{"Timestamp", "Name", "Premium", "Sale Type", "Carrier", "Lead Age", "Lead Type"},
		{"2024-06-10 09:00:00", "Alice", "1000", "FE", "Acme", "3 days", "FB"},
	}
}

func TestTickBaselineThenNotifiesAppendedRows(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	chat := &fakeChat{}
	sales := &fakeSales{totals: map[string]domain.LeaderboardEntry{
		"Bob": {PremiumTotal: 2200, AppCount: 2},
	}}
	p := newTestPoller(t, src, chat, sales)

	// Baseline tick reports nothing.
	if wait := p.tick(context.Background(), p.interval); wait != p.interval {
		t.Fatalf("baseline wait: %v", wait)
	}
	if len(chat.messages) != 0 {
		t.Fatalf("baseline must not notify: %v", chat.messages)
	}

	src.grid = append(baseGrid(),
		[]string{"2024-06-10 10:00:00", "Bob", "2,200", "FE", "Acme", "5 days", "FB"},
	)
	if wait := p.tick(context.Background(), p.interval); wait != p.interval {
		t.Fatalf("wait after clean poll: %v", wait)
	}

	if len(chat.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(chat.messages))
	}
	msg := chat.messages[0]
	if !strings.Contains(msg, "First Sale Alert!") {
		t.Fatalf("bob has no prior rows, expected first sale banner:\n%s", msg)
	}
	if !strings.Contains(msg, "**Week to Date Sales:** $2,200.00") {
		t.Fatalf("missing WTD line:\n%s", msg)
	}
}

func TestTickRepeatSaleIsNotFirst(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	chat := &fakeChat{}
	p := newTestPoller(t, src, chat, &fakeSales{})

	p.tick(context.Background(), p.interval)

	src.grid = append(baseGrid(),
		[]string{"2024-06-10 11:00:00", "Alice", "900", "FE", "Acme", "2 days", "FB"},
	)
	p.tick(context.Background(), p.interval)

	if len(chat.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(chat.messages))
	}
	if strings.Contains(chat.messages[0], "First Sale Alert!") {
		t.Fatalf("alice already sold at row 1:\n%s", chat.messages[0])
	}
	if !strings.Contains(chat.messages[0], "Alice just made a sale!") {
		t.Fatalf("expected plain sale banner:\n%s", chat.messages[0])
	}
}

func TestTickRateLimitWidensWait(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	p := newTestPoller(t, src, &fakeChat{}, &fakeSales{})

	p.tick(context.Background(), p.interval)

	src.err = &sheets.APIError{StatusCode: 429, Message: "quota exceeded"}
	if wait := p.tick(context.Background(), p.interval); wait != p.backoff {
		t.Fatalf("expected backoff %v, got %v", p.backoff, wait)
	}

	// A clean poll restores the base interval.
	src.err = nil
	if wait := p.tick(context.Background(), p.backoff); wait != p.interval {
		t.Fatalf("expected interval restored, got %v", wait)
	}
}

func TestTickNonRateLimitErrorKeepsWait(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	p := newTestPoller(t, src, &fakeChat{}, &fakeSales{})

	p.tick(context.Background(), p.interval)

	src.err = errors.New("boom")
	if wait := p.tick(context.Background(), p.interval); wait != p.interval {
		t.Fatalf("plain errors must not widen the wait, got %v", wait)
	}
}

func TestTickFailedBaselineUsesInitRetry(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	p := newTestPoller(t, src, &fakeChat{}, &fakeSales{})

	if wait := p.tick(context.Background(), p.interval); wait != p.initRetry {
		t.Fatalf("expected init retry wait %v, got %v", p.initRetry, wait)
	}
}

func TestNotifyBatchSkipsMalformedRow(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	chat := &fakeChat{}
	p := newTestPoller(t, src, chat, &fakeSales{})

	p.tick(context.Background(), p.interval)

	src.grid = append(baseGrid(),
		[]string{"not a date", "Bob", "100", "", "", "", ""},
		[]string{"2024-06-10 12:00:00", "Carol", "300", "", "", "", ""},
	)
	p.tick(context.Background(), p.interval)

	if len(chat.messages) != 1 {
		t.Fatalf("expected only carol's notification, got %d", len(chat.messages))
	}
	if !strings.Contains(chat.messages[0], "Carol") {
		t.Fatalf("unexpected notification:\n%s", chat.messages[0])
	}
}

func TestNotifyBatchDeliveryFailureDoesNotStopBatch(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	chat := &fakeChat{err: errors.New("forbidden")}
	p := newTestPoller(t, src, chat, &fakeSales{})

	p.tick(context.Background(), p.interval)

	src.grid = append(baseGrid(),
		[]string{"2024-06-10 12:00:00", "Carol", "300", "", "", "", ""},
	)
	p.tick(context.Background(), p.interval)

	// Delivery failed but state advanced; re-poll must not replay the row.
	chat.err = nil
	p.tick(context.Background(), p.interval)
	if len(chat.messages) != 0 {
		t.Fatalf("row must not replay after failed delivery: %v", chat.messages)
	}
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	src := &fakeSource{grid: baseGrid()}
	p := newTestPoller(t, src, &fakeChat{}, &fakeSales{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.RunForever(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunForever did not stop on cancel")
	}
}

type recordingLifecycle struct {
	hooks []fx.Hook
}

func (l *recordingLifecycle) Append(h fx.Hook) {
	l.hooks = append(l.hooks, h)
}

func TestStartPollerRegistersStopBeforeStart(t *testing.T) {
	p := newTestPoller(t, &fakeSource{grid: baseGrid()}, &fakeChat{}, &fakeSales{})

	lc := &recordingLifecycle{}
	StartPoller(lc, p)

	// Both callbacks must sit on the one hook registered up front; a stop
	// callback appended during OnStart is never executed by fx.
	if len(lc.hooks) != 1 {
		t.Fatalf("expected one hook, got %d", len(lc.hooks))
	}
	hook := lc.hooks[0]
	if hook.OnStart == nil || hook.OnStop == nil {
		t.Fatalf("hook must carry both callbacks: %+v", hook)
	}
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start: %v", err)
	}
	if err := hook.OnStop(context.Background()); err != nil {
		t.Fatalf("on stop: %v", err)
	}
}

func TestClassifyPollError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&sheets.APIError{StatusCode: 429}, "rate_limited"},
		{&sheets.APIError{StatusCode: 500}, "unavailable"},
		{sheets.ErrNotFound, "unavailable"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		if got := classifyPollError(tc.err); got != tc.want {
			t.Fatalf("classify %v: got %q, want %q", tc.err, got, tc.want)
		}
	}
}
