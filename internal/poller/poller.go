package poller

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/config"
	obslogger "github.com/agencyops/salesboard/internal/observability/logger"
	obsmetrics "github.com/agencyops/salesboard/internal/observability/metrics"
	"github.com/agencyops/salesboard/internal/notify"
	"github.com/agencyops/salesboard/internal/providers/discord"
	"github.com/agencyops/salesboard/internal/providers/sheets"
	"github.com/agencyops/salesboard/internal/sales/domain"
	"github.com/agencyops/salesboard/internal/sales/normalize"
	"github.com/agencyops/salesboard/internal/tracker"
)

var ErrInvalidConfig = errors.New("invalid_poller_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	Source     sheets.Source
	Chat       discord.Provider
	Sales      domain.Service
	Normalizer *normalize.Normalizer
	GenID      *snowflake.Node
	Config     config.Config
}

// Poller drives row-diff polling: every tick it asks the tracker for newly
// appended rows and turns each one into a chat notification. It owns the
// only reference to the tracker, and ticks run strictly one after another,
// so the poll state needs no lock.
type Poller struct {
	log       *zap.Logger
	source    sheets.Source
	chat      discord.Provider
	sales     domain.Service
	norm      *normalize.Normalizer
	genID     *snowflake.Node
	tracker   *tracker.Tracker
	cols      config.ColumnConfig
	channel   string
	emoji     notify.EmojiConfig
	interval  time.Duration
	backoff   time.Duration
	initRetry time.Duration
	timeout   time.Duration
}

func New(p Params) (*Poller, error) {
	if p.Log == nil || p.Source == nil || p.Chat == nil || p.Sales == nil || p.Normalizer == nil || p.GenID == nil {
		return nil, ErrInvalidConfig
	}
	polling := p.Config.Polling
	if polling.Interval <= 0 {
		polling.Interval = time.Minute
	}
	if polling.BackoffInterval <= 0 {
		polling.BackoffInterval = 5 * time.Minute
	}
	if polling.InitialRetry <= 0 {
		polling.InitialRetry = polling.Interval
	}
	if polling.CallTimeout <= 0 {
		polling.CallTimeout = 30 * time.Second
	}
	return &Poller{
		log:     p.Log.Named("poller").With(zap.String("component", "poller")),
		source:  p.Source,
		chat:    p.Chat,
		sales:   p.Sales,
		norm:    p.Normalizer,
		genID:   p.GenID,
		tracker: tracker.New(p.Log),
		cols:    p.Config.Columns,
		channel: p.Config.Discord.NotificationChannel,
		emoji: notify.EmojiConfig{
			Alarm: p.Config.Discord.AlarmEmoji,
			GSD:   p.Config.Discord.GSDEmoji,
		},
		interval:  polling.Interval,
		backoff:   polling.BackoffInterval,
		initRetry: polling.InitialRetry,
		timeout:   polling.CallTimeout,
	}, nil
}

// RunForever polls until the context is cancelled. A failed tick widens
// nothing by itself; only rate-limit signals stretch the wait, and one
// clean poll snaps it back to the configured interval.
func (p *Poller) RunForever(ctx context.Context) {
	wait := p.interval
	for {
		wait = p.tick(ctx, wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// tick runs one poll and returns the wait before the next one.
func (p *Poller) tick(ctx context.Context, current time.Duration) time.Duration {
	log := obslogger.WithRun(p.log, p.genID.Generate().String())
	botMetrics := obsmetrics.Bot()
	botMetrics.IncPollRun()

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	batch, err := p.tracker.Poll(callCtx, p.source)
	botMetrics.ObserveSourceLatency(time.Since(start))
	if err != nil {
		reason := classifyPollError(err)
		botMetrics.IncPollError(reason)
		log.Warn("poll failed, state preserved",
			zap.String("reason", reason),
			zap.Bool("initialized", p.tracker.Initialized()),
			zap.Error(err),
		)
		if reason == obsmetrics.PollErrorReasonRateLimited {
			log.Info("rate limited, widening poll interval", zap.Duration("interval", p.backoff))
			return p.backoff
		}
		if !p.tracker.Initialized() {
			return p.initRetry
		}
		return current
	}

	if batch != nil {
		p.notifyBatch(ctx, log, batch)
	}
	return p.interval
}

// notifyBatch posts one message per appended row. Row failures are
// isolated: a malformed row or a failed send never stops the rest of the
// batch, and the tracker state has already advanced exactly once.
func (p *Poller) notifyBatch(ctx context.Context, log *zap.Logger, batch *tracker.Batch) {
	botMetrics := obsmetrics.Bot()
	botMetrics.AddRowsDetected(len(batch.Rows))

	if len(batch.Grid) == 0 {
		return
	}
	headers := batch.Grid[0]
	nameIdx := tracker.HeaderIndex(headers, p.cols.Name)

	weekToDate := p.weeklyTotals(ctx, log)

	for i, row := range batch.Rows {
		record := recordFromRow(headers, row)

		if _, err := p.norm.Normalize(record, normalize.ColumnMap{
			Timestamp: p.cols.Timestamp,
			Name:      p.cols.Name,
			Premium:   p.cols.Premium,
		}); err != nil {
			botMetrics.IncRowSkipped()
			log.Warn("skipping notification for malformed row",
				zap.Int("row", batch.StartIndex+i),
				zap.Error(err),
			)
			continue
		}

		name := record[p.cols.Name]
		first := tracker.IsFirstSale(name, batch.Grid, nameIdx, batch.StartIndex+i)
		kind := obsmetrics.NotificationNewSale
		if first {
			kind = obsmetrics.NotificationFirstSale
		}

		message := notify.NewSaleMessage(notify.SaleDetails{
			Name:             name,
			SaleType:         record[p.cols.SaleType],
			Premium:          record[p.cols.Premium],
			Carrier:          record[p.cols.Carrier],
			LeadType:         record[p.cols.LeadType],
			LeadAge:          record[p.cols.LeadAge],
			FieldOrTelesale:  record[p.cols.FieldOrTelesale],
			DraftDate:        record[p.cols.DraftDate],
			AppointmentsLeft: record[p.cols.AppointmentsLeft],
		}, first, weekToDate[name].PremiumTotal, p.emoji)

		postCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.chat.PostMessage(postCtx, p.channel, message)
		cancel()
		if err != nil {
			botMetrics.IncNotificationError(kind)
			log.Warn("sale notification delivery failed",
				zap.Int("row", batch.StartIndex+i),
				zap.Error(err),
			)
			continue
		}
		botMetrics.IncNotification(kind)
		log.Info("sale notification posted",
			zap.String("salesperson", name),
			zap.Bool("first_sale", first),
			zap.Int("row", batch.StartIndex+i),
		)
	}
}

// weeklyTotals is best effort: notifications still go out with a zero WTD
// line when the re-read fails.
func (p *Poller) weeklyTotals(ctx context.Context, log *zap.Logger) map[string]domain.LeaderboardEntry {
	totals, err := p.sales.WeeklyTotals(ctx)
	if err != nil {
		log.Warn("week-to-date totals unavailable", zap.Error(err))
		return map[string]domain.LeaderboardEntry{}
	}
	return totals
}

func recordFromRow(headers []string, row []string) map[string]string {
	record := make(map[string]string, len(headers))
	for i, header := range headers {
		key := strings.TrimSpace(header)
		if i < len(row) {
			record[key] = row[i]
		} else {
			record[key] = ""
		}
	}
	return record
}

func classifyPollError(err error) string {
	switch {
	case sheets.IsRateLimited(err):
		return obsmetrics.PollErrorReasonRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return obsmetrics.PollErrorReasonTimeout
	case errors.Is(err, sheets.ErrNotFound):
		return obsmetrics.PollErrorReasonUnavailable
	default:
		var apiErr *sheets.APIError
		if errors.As(err, &apiErr) {
			return obsmetrics.PollErrorReasonUnavailable
		}
		return obsmetrics.PollErrorReasonUnknown
	}
}
