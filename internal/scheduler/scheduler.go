package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/clock"
	obslogger "github.com/agencyops/salesboard/internal/observability/logger"
	obsmetrics "github.com/agencyops/salesboard/internal/observability/metrics"
	"github.com/agencyops/salesboard/internal/providers/discord"
	"github.com/agencyops/salesboard/internal/sales/domain"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Sales  domain.Service
	Chat   discord.Provider
	GenID  *snowflake.Node
	Config Config `optional:"true"`
}

// Scheduler fires the time-of-day posting jobs: the daily leaderboard and
// the conditional motivation post. Jobs run one at a time on a single
// goroutine; a slow job delays the next one rather than overlapping it.
type Scheduler struct {
	log   *zap.Logger
	cfg   Config
	clock clock.Clock
	sales domain.Service
	chat  discord.Provider
	genID *snowflake.Node
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Sales == nil || p.Chat == nil || p.GenID == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		log:   p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:   cfg,
		clock: p.Clock,
		sales: p.Sales,
		chat:  p.Chat,
		genID: p.GenID,
	}, nil
}

type job struct {
	name string
	at   time.Time
	run  func(ctx context.Context) error
}

// RunForever sleeps until the next due job, runs it, and repeats until the
// context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	for {
		next := s.nextJob(s.clock.Now())
		wait := next.at.Sub(s.clock.Now())
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		s.runJob(ctx, next.name, next.run)
	}
}

// nextJob picks whichever scheduled job fires soonest after now.
func (s *Scheduler) nextJob(now time.Time) job {
	leaderboard := job{
		name: "daily_leaderboard",
		at:   NextDaily(now, s.cfg.LeaderboardAt),
		run:  s.postDailyLeaderboard,
	}
	motivation := job{
		name: "motivation_check",
		at:   NextWeekly(now, s.cfg.MotivationWeekday, s.cfg.MotivationAt),
		run:  s.postMotivationIfQuiet,
	}
	if motivation.at.Before(leaderboard.at) {
		return motivation
	}
	return leaderboard
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := obslogger.WithRun(s.log, s.genID.Generate().String()).With(zap.String("job", name))
	log.Info("job started")

	if err := fn(ctx); err != nil {
		log.Warn("job failed", zap.Duration("elapsed", s.clock.Now().Sub(start)), zap.Error(err))
		return
	}
	log.Info("job finished", zap.Duration("elapsed", s.clock.Now().Sub(start)))
}

func (s *Scheduler) postDailyLeaderboard(ctx context.Context) error {
	return s.sales.PostLeaderboard(ctx, s.cfg.LeaderboardChannel, domain.TimeframeWeekly)
}

// postMotivationIfQuiet posts the configured GIF only when nobody has sold
// anything in the current week.
func (s *Scheduler) postMotivationIfQuiet(ctx context.Context) error {
	if s.cfg.MotivationGIF == "" {
		return nil
	}

	board, err := s.sales.Leaderboard(ctx, domain.TimeframeWeekly)
	if err != nil {
		return err
	}
	if hasSales(board) {
		return nil
	}

	if err := s.chat.PostMessage(ctx, s.cfg.NotificationChannel, s.cfg.MotivationGIF); err != nil {
		obsmetrics.Bot().IncNotificationError(obsmetrics.NotificationMotivation)
		return err
	}
	obsmetrics.Bot().IncNotification(obsmetrics.NotificationMotivation)
	return nil
}

// hasSales ignores zero-value filler rows.
func hasSales(board domain.Board) bool {
	for _, row := range board.Rows {
		if row.Entry.AppCount > 0 {
			return true
		}
	}
	return false
}

// NextDaily returns the next occurrence of the wall-clock time strictly
// after now, in now's location.
func NextDaily(now time.Time, at DayTime) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly returns the next occurrence of weekday at the wall-clock time
// strictly after now, in now's location.
func NextWeekly(now time.Time, weekday time.Weekday, at DayTime) time.Time {
	next := NextDaily(now, at)
	for next.Weekday() != weekday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
