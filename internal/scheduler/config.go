package scheduler

import (
	"time"

	appconfig "github.com/agencyops/salesboard/internal/config"
)

// DayTime is a wall-clock time of day in the application zone.
type DayTime struct {
	Hour   int
	Minute int
}

// Config controls the scheduled posting jobs.
type Config struct {
	LeaderboardChannel  string
	NotificationChannel string

	LeaderboardAt DayTime

	MotivationWeekday time.Weekday
	MotivationAt      DayTime
	MotivationGIF     string

	JobTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		LeaderboardAt:     DayTime{Hour: 19},
		MotivationWeekday: time.Tuesday,
		MotivationAt:      DayTime{Hour: 13, Minute: 30},
		JobTimeout:        time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// ProvideConfig maps application config onto scheduler config. The
// leaderboard channel falls back to the notification channel so a minimal
// deployment only has to configure one.
func ProvideConfig(cfg appconfig.Config) Config {
	leaderboardChannel := cfg.Discord.LeaderboardChannel
	if leaderboardChannel == "" {
		leaderboardChannel = cfg.Discord.NotificationChannel
	}
	return Config{
		LeaderboardChannel:  leaderboardChannel,
		NotificationChannel: cfg.Discord.NotificationChannel,
		LeaderboardAt: DayTime{
			Hour:   cfg.Schedule.LeaderboardHour,
			Minute: cfg.Schedule.LeaderboardMinute,
		},
		MotivationWeekday: cfg.Schedule.MotivationWeekday,
		MotivationAt: DayTime{
			Hour:   cfg.Schedule.MotivationHour,
			Minute: cfg.Schedule.MotivationMinute,
		},
		MotivationGIF: cfg.Discord.TuesdayMotivationGIF,
		JobTimeout:    cfg.Polling.CallTimeout,
	}
}
