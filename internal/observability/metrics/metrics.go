package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// Low-cardinality poll error reasons.
const (
	PollErrorReasonRateLimited = "rate_limited"
	PollErrorReasonUnavailable = "unavailable"
	PollErrorReasonTimeout     = "timeout"
	PollErrorReasonUnknown     = "unknown"
)

// Notification kinds.
const (
	NotificationNewSale     = "new_sale"
	NotificationFirstSale   = "first_sale"
	NotificationLeaderboard = "leaderboard"
	NotificationMotivation  = "motivation"
)

// BotMetrics captures poll-loop and notification health signals.
type BotMetrics struct {
	pollRuns           prometheus.Counter
	pollErrors         *prometheus.CounterVec
	rowsDetected       prometheus.Counter
	rowsSkipped        prometheus.Counter
	notifications      *prometheus.CounterVec
	notificationErrors *prometheus.CounterVec
	sourceLatency      prometheus.Histogram
	boardRows          *prometheus.GaugeVec
}

var (
	botMetricsOnce sync.Once
	botMetrics     *BotMetrics
)

// Bot returns the singleton bot metrics registry.
func Bot() *BotMetrics {
	return BotWithConfig(Config{})
}

// BotWithConfig returns the singleton bot metrics registry using config labels.
func BotWithConfig(cfg Config) *BotMetrics {
	botMetricsOnce.Do(func() {
		botMetrics = newBotMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return botMetrics
}

// ResetBotMetricsForTest resets the bot metrics singleton for tests.
func ResetBotMetricsForTest() {
	botMetricsOnce = sync.Once{}
	botMetrics = nil
}

func newBotMetrics(registerer prometheus.Registerer, cfg Config) *BotMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "salesboard"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	pollRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "salesboard_poll_runs_total",
		Help:        "Sheet polls attempted.",
		ConstLabels: constLabels,
	})
	pollErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "salesboard_poll_errors_total",
		Help:        "Sheet polls that failed, by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	rowsDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "salesboard_rows_detected_total",
		Help:        "Newly appended sheet rows detected by the diff tracker.",
		ConstLabels: constLabels,
	})
	rowsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "salesboard_rows_skipped_total",
		Help:        "Detected rows dropped as malformed (bad timestamp or name).",
		ConstLabels: constLabels,
	})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "salesboard_notifications_total",
		Help:        "Chat notifications delivered, by kind.",
		ConstLabels: constLabels,
	}, []string{"kind"})
	notificationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "salesboard_notification_errors_total",
		Help:        "Chat notifications that failed to deliver, by kind.",
		ConstLabels: constLabels,
	}, []string{"kind"})
	sourceLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "salesboard_source_fetch_seconds",
		Help:        "Spreadsheet fetch latency.",
		Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	})
	boardRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "salesboard_leaderboard_rows",
		Help:        "Rows on the most recently built leaderboard.",
		ConstLabels: constLabels,
	}, []string{"timeframe"})

	for _, c := range []prometheus.Collector{
		pollRuns, pollErrors, rowsDetected, rowsSkipped,
		notifications, notificationErrors, sourceLatency, boardRows,
	} {
		registerer.MustRegister(c)
	}

	return &BotMetrics{
		pollRuns:           pollRuns,
		pollErrors:         pollErrors,
		rowsDetected:       rowsDetected,
		rowsSkipped:        rowsSkipped,
		notifications:      notifications,
		notificationErrors: notificationErrors,
		sourceLatency:      sourceLatency,
		boardRows:          boardRows,
	}
}

func (m *BotMetrics) IncPollRun() {
	if m == nil {
		return
	}
	m.pollRuns.Inc()
}

func (m *BotMetrics) IncPollError(reason string) {
	if m == nil {
		return
	}
	m.pollErrors.WithLabelValues(reason).Inc()
}

func (m *BotMetrics) AddRowsDetected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsDetected.Add(float64(n))
}

func (m *BotMetrics) IncRowSkipped() {
	if m == nil {
		return
	}
	m.rowsSkipped.Inc()
}

func (m *BotMetrics) IncNotification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) IncNotificationError(kind string) {
	if m == nil {
		return
	}
	m.notificationErrors.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) ObserveSourceLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.sourceLatency.Observe(d.Seconds())
}

func (m *BotMetrics) SetBoardRows(timeframe string, n int) {
	if m == nil {
		return
	}
	m.boardRows.WithLabelValues(timeframe).Set(float64(n))
}
