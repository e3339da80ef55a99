package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSetting marks a fatal startup misconfiguration.
var ErrMissingSetting = errors.New("missing_required_setting")

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	TimeZone    string

	Sheet    SheetConfig
	Columns  ColumnConfig
	Discord  DiscordConfig
	Polling  PollingConfig
	Schedule ScheduleConfig
	Display  DisplayConfig

	HTTPAddr string
}

// SheetConfig identifies the spreadsheet source.
type SheetConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	SpreadsheetName string
	WorksheetName   string
}

// ColumnConfig maps spreadsheet column headers to sale fields.
type ColumnConfig struct {
	Timestamp        string
	Name             string
	Premium          string
	SaleType         string
	Carrier          string
	LeadAge          string
	LeadType         string
	FieldOrTelesale  string
	DraftDate        string
	AppointmentsLeft string
}

// DiscordConfig holds the chat surface settings.
type DiscordConfig struct {
	BotToken             string
	NotificationChannel  string
	LeaderboardChannel   string
	CommandPrefix        string
	AlarmEmoji           string
	GSDEmoji             string
	TuesdayMotivationGIF string
}

// PollingConfig controls the new-sale poll loop.
type PollingConfig struct {
	Interval        time.Duration
	BackoffInterval time.Duration
	InitialRetry    time.Duration
	CallTimeout     time.Duration
}

// ScheduleConfig controls the time-of-day posting jobs.
type ScheduleConfig struct {
	LeaderboardHour   int
	LeaderboardMinute int
	MotivationWeekday time.Weekday
	MotivationHour    int
	MotivationMinute  int
}

// DisplayConfig controls leaderboard rendering limits.
type DisplayConfig struct {
	MaxEntries    int
	MaxFields     int
	LookbackDays  int
	ExtraLayouts  []string
	TiersFile     string
	TiersFileDirs []string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "salesboard"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		TimeZone:    getenv("APP_TIMEZONE", "America/New_York"),
		Sheet: SheetConfig{
			CredentialsFile: getenv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
			SpreadsheetID:   getenv("GOOGLE_SPREADSHEET_ID", ""),
			SpreadsheetName: getenv("GOOGLE_SHEET_NAME", ""),
			WorksheetName:   getenv("GOOGLE_SHEET_WORKSHEET_NAME", ""),
		},
		Columns: ColumnConfig{
			Timestamp:        getenv("TIMESTAMP_COLUMN", "Timestamp"),
			Name:             getenv("FIRST_NAME_COLUMN", "Name"),
			Premium:          getenv("PREMIUM_COLUMN", "Premium"),
			SaleType:         getenv("SALE_TYPE_COLUMN", "Sale Type"),
			Carrier:          getenv("CARRIER_COLUMN", "Carrier"),
			LeadAge:          getenv("LEAD_AGE_COLUMN", "Lead Age"),
			LeadType:         getenv("LEAD_TYPE_COLUMN", "Lead Type"),
			FieldOrTelesale:  getenv("FIELD_OR_TELESALE_COLUMN", "Field or Telesale"),
			DraftDate:        getenv("DRAFT_DATE_COLUMN", "Draft Date"),
			AppointmentsLeft: getenv("APPOINTMENTS_LEFT_COLUMN", "Appointments Left"),
		},
		Discord: DiscordConfig{
			BotToken:             getenv("DISCORD_BOT_TOKEN", ""),
			NotificationChannel:  getenv("NOTIFICATION_CHANNEL_ID", ""),
			LeaderboardChannel:   getenv("AUTOMATED_LEADERBOARD_CHANNEL_ID", ""),
			CommandPrefix:        getenv("COMMAND_PREFIX", "!"),
			AlarmEmoji:           getenv("ALARM_EMOJI_TAG", "🚨"),
			GSDEmoji:             getenv("GSD_EMOJI_TAG", "💪"),
			TuesdayMotivationGIF: getenv("TUESDAY_NOON_GIF_URL", ""),
		},
		Polling: PollingConfig{
			Interval:        getenvDuration("POLL_INTERVAL", time.Minute),
			BackoffInterval: getenvDuration("POLL_BACKOFF_INTERVAL", 5*time.Minute),
			InitialRetry:    getenvDuration("POLL_INITIAL_RETRY", time.Minute),
			CallTimeout:     getenvDuration("SOURCE_CALL_TIMEOUT", 30*time.Second),
		},
		Schedule: ScheduleConfig{
			LeaderboardHour:   getenvInt("LEADERBOARD_POST_HOUR", 19),
			LeaderboardMinute: getenvInt("LEADERBOARD_POST_MINUTE", 0),
			MotivationWeekday: time.Weekday(getenvInt("MOTIVATION_WEEKDAY", int(time.Tuesday))),
			MotivationHour:    getenvInt("MOTIVATION_HOUR", 13),
			MotivationMinute:  getenvInt("MOTIVATION_MINUTE", 30),
		},
		Display: DisplayConfig{
			MaxEntries:   getenvInt("LEADERBOARD_MAX_ENTRIES", 20),
			MaxFields:    getenvInt("LEADERBOARD_MAX_FIELDS", 25),
			LookbackDays: getenvInt("LEADERBOARD_LOOKBACK_DAYS", 14),
			ExtraLayouts: splitList(getenv("EXTRA_TIMESTAMP_LAYOUTS", "")),
			TiersFile:    getenv("TIERS_CONFIG_NAME", "tiers"),
			TiersFileDirs: []string{
				getenv("TIERS_CONFIG_DIR", "/etc/salesboard"),
				".",
			},
		},
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
	}
}

// Validate rejects a configuration the process cannot start with. Every
// condition here is fatal at startup, never a per-poll error.
func (c Config) Validate() error {
	if c.Sheet.CredentialsFile == "" {
		return fmt.Errorf("%w: GOOGLE_SERVICE_ACCOUNT_FILE", ErrMissingSetting)
	}
	if c.Sheet.SpreadsheetID == "" {
		return fmt.Errorf("%w: GOOGLE_SPREADSHEET_ID", ErrMissingSetting)
	}
	if c.Sheet.WorksheetName == "" {
		return fmt.Errorf("%w: GOOGLE_SHEET_WORKSHEET_NAME", ErrMissingSetting)
	}
	if c.Discord.BotToken == "" {
		return fmt.Errorf("%w: DISCORD_BOT_TOKEN", ErrMissingSetting)
	}
	if c.Discord.NotificationChannel == "" {
		return fmt.Errorf("%w: NOTIFICATION_CHANNEL_ID", ErrMissingSetting)
	}
	for name, v := range map[string]string{
		"TIMESTAMP_COLUMN":         c.Columns.Timestamp,
		"FIRST_NAME_COLUMN":        c.Columns.Name,
		"PREMIUM_COLUMN":           c.Columns.Premium,
		"SALE_TYPE_COLUMN":         c.Columns.SaleType,
		"CARRIER_COLUMN":           c.Columns.Carrier,
		"LEAD_AGE_COLUMN":          c.Columns.LeadAge,
		"LEAD_TYPE_COLUMN":         c.Columns.LeadType,
		"APPOINTMENTS_LEFT_COLUMN": c.Columns.AppointmentsLeft,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", ErrMissingSetting, name)
		}
	}
	if c.TimeZone == "" {
		return fmt.Errorf("%w: APP_TIMEZONE", ErrMissingSetting)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
