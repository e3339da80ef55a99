package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/clock"
	"github.com/agencyops/salesboard/internal/config"
	obsmetrics "github.com/agencyops/salesboard/internal/observability/metrics"
	"github.com/agencyops/salesboard/internal/notify"
	"github.com/agencyops/salesboard/internal/providers/discord"
	"github.com/agencyops/salesboard/internal/providers/sheets"
	"github.com/agencyops/salesboard/internal/sales/aggregate"
	"github.com/agencyops/salesboard/internal/sales/domain"
	"github.com/agencyops/salesboard/internal/sales/normalize"
	"github.com/agencyops/salesboard/internal/sales/window"
)

var ErrInvalidConfig = errors.New("invalid_service_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Source     sheets.Source
	Chat       discord.Provider
	Normalizer *normalize.Normalizer
	Tiers      *config.TierConfigHolder
	Config     config.Config
}

// Service builds leaderboards from the sheet and publishes them to chat.
type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	source      sheets.Source
	chat        discord.Provider
	norm        *normalize.Normalizer
	tiers       *config.TierConfigHolder
	cols        normalize.ColumnMap
	display     config.DisplayConfig
	callTimeout time.Duration
}

func New(p Params) (*Service, error) {
	if p.Log == nil || p.Clock == nil || p.Source == nil || p.Chat == nil || p.Normalizer == nil || p.Tiers == nil {
		return nil, ErrInvalidConfig
	}
	callTimeout := p.Config.Polling.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	display := p.Config.Display
	if display.MaxFields <= 0 {
		display.MaxFields = 25
	}
	return &Service{
		log:    p.Log.Named("sales").With(zap.String("component", "sales_service")),
		clock:  p.Clock,
		source: p.Source,
		chat:   p.Chat,
		norm:   p.Normalizer,
		tiers:  p.Tiers,
		cols: normalize.ColumnMap{
			Timestamp: p.Config.Columns.Timestamp,
			Name:      p.Config.Columns.Name,
			Premium:   p.Config.Columns.Premium,
		},
		display:     display,
		callTimeout: callTimeout,
	}, nil
}

// Leaderboard recomputes the board for the timeframe from a fresh full read.
// No aggregation state survives between calls.
func (s *Service) Leaderboard(ctx context.Context, tf domain.Timeframe) (domain.Board, error) {
	if !tf.Valid() {
		return domain.Board{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimeframe, tf)
	}

	events, err := s.events(ctx)
	if err != nil {
		return domain.Board{}, err
	}

	now := s.clock.Now()
	win := window.ForTimeframe(now, tf)

	var lookback *domain.TimeWindow
	if tf == domain.TimeframeWeekly && s.display.LookbackDays > 0 {
		lb := window.Lookback(now, s.display.LookbackDays)
		lookback = &lb
	}

	rows := aggregate.Build(events, win, lookback, s.display.MaxEntries)

	var teamTotal float64
	for _, row := range rows {
		teamTotal += row.Entry.PremiumTotal
	}

	obsmetrics.Bot().SetBoardRows(string(tf), len(rows))

	return domain.Board{
		Timeframe:   tf,
		Window:      win,
		Rows:        rows,
		TeamTotal:   teamTotal,
		GeneratedAt: now,
	}, nil
}

// PostLeaderboard renders and posts the board. Source failures reach chat
// only as a friendly fallback line; the wrapped error is returned for the
// caller's log.
func (s *Service) PostLeaderboard(ctx context.Context, channelID string, tf domain.Timeframe) error {
	board, err := s.Leaderboard(ctx, tf)
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) {
			if postErr := s.chat.PostMessage(ctx, channelID, notify.SourceUnavailableMessage); postErr != nil {
				s.log.Warn("fallback message delivery failed", zap.Error(postErr))
			}
		}
		return err
	}

	if board.Empty() {
		return s.chat.PostMessage(ctx, channelID, notify.EmptyBoardMessage(tf))
	}

	embed, ok := notify.LeaderboardEmbed(board, s.tiers.Get(), s.display.MaxFields)
	if !ok {
		return s.chat.PostMessage(ctx, channelID, notify.EmptyBoardMessage(tf))
	}

	if err := s.chat.PostEmbed(ctx, channelID, embed); err != nil {
		obsmetrics.Bot().IncNotificationError(obsmetrics.NotificationLeaderboard)
		return err
	}
	obsmetrics.Bot().IncNotification(obsmetrics.NotificationLeaderboard)
	s.log.Info("leaderboard posted",
		zap.String("channel_id", channelID),
		zap.String("timeframe", string(tf)),
		zap.Int("rows", len(board.Rows)),
	)
	return nil
}

// WeeklyTotals returns per-salesperson week-to-date totals, used for the
// WTD line on sale notifications.
func (s *Service) WeeklyTotals(ctx context.Context) (map[string]domain.LeaderboardEntry, error) {
	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Totals(events, window.Week(s.clock.Now())), nil
}

// events runs a bounded full read and normalizes every row. Malformed rows
// are dropped one by one; they never abort the batch.
func (s *Service) events(ctx context.Context) ([]domain.SaleEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	records, err := s.source.Records(ctx)
	obsmetrics.Bot().ObserveSourceLatency(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	events := make([]domain.SaleEvent, 0, len(records))
	for i, record := range records {
		ev, err := s.norm.Normalize(record, s.cols)
		if err != nil {
			if errors.Is(err, normalize.ErrSkipRecord) {
				s.log.Debug("row skipped", zap.Int("row", i+1), zap.Error(err))
				continue
			}
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
