package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/sales/domain"
)

// ErrSkipRecord marks a row that cannot become a SaleEvent. The row is
// dropped and processing continues; it is never fatal for the batch.
var ErrSkipRecord = errors.New("skip_record")

// ColumnMap names the three columns a SaleEvent is built from.
type ColumnMap struct {
	Timestamp string
	Name      string
	Premium   string
}

// civilLayouts are tried in order; first match wins. The offset layout is
// RFC3339-like and keeps its zone; all others are civil times interpreted
// in the normalizer's fixed location.
var civilLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"2006-01-02",
	"1/2/2006",
}

// Normalizer turns raw row records into SaleEvents.
type Normalizer struct {
	loc     *time.Location
	layouts []string
	log     *zap.Logger
}

// New builds a Normalizer anchored to loc. extraLayouts are appended after
// the built-in table, so operators can teach the bot new source formats
// without a deploy.
func New(loc *time.Location, extraLayouts []string, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	layouts := make([]string, 0, len(civilLayouts)+len(extraLayouts))
	layouts = append(layouts, civilLayouts...)
	layouts = append(layouts, extraLayouts...)
	return &Normalizer{loc: loc, layouts: layouts, log: log}
}

// Normalize converts one raw record into a SaleEvent. A missing timestamp or
// name, or an unparseable timestamp, skips the row via ErrSkipRecord. A bad
// premium never skips the row; it coerces to zero with a warning.
func (n *Normalizer) Normalize(raw map[string]string, cols ColumnMap) (domain.SaleEvent, error) {
	ts := strings.TrimSpace(raw[cols.Timestamp])
	if ts == "" {
		return domain.SaleEvent{}, fmt.Errorf("%w: empty timestamp", ErrSkipRecord)
	}
	name := strings.TrimSpace(raw[cols.Name])
	if name == "" {
		return domain.SaleEvent{}, fmt.Errorf("%w: empty name", ErrSkipRecord)
	}

	when, err := n.parseTimestamp(ts)
	if err != nil {
		return domain.SaleEvent{}, fmt.Errorf("%w: unparseable timestamp %q", ErrSkipRecord, ts)
	}

	return domain.SaleEvent{
		Timestamp:   when,
		Salesperson: name,
		Premium:     n.parsePremium(raw[cols.Premium], name),
	}, nil
}

func (n *Normalizer) parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range n.layouts {
		candidate := raw
		if !strings.Contains(layout, "Z07:00") {
			candidate = stripOffset(candidate)
		}
		if t, err := time.ParseInLocation(layout, candidate, n.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matched %q", raw)
}

// ParsePremium exposes premium coercion for callers that only have the raw
// cell, like per-sale notifications.
func (n *Normalizer) ParsePremium(raw string) float64 {
	return n.parsePremium(raw, "")
}

func (n *Normalizer) parsePremium(raw, name string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		n.log.Warn("premium not numeric, using zero",
			zap.String("raw", raw),
			zap.String("salesperson", name),
		)
		return 0
	}
	return value
}

// stripOffset removes a trailing "+hh:mm" style offset or "Z" so civil
// layouts can still match a zone-suffixed source value (best-effort civil
// parse, matching how the sheet has historically mixed formats).
func stripOffset(raw string) string {
	if idx := strings.Index(raw, "+"); idx > 0 {
		return strings.TrimSpace(raw[:idx])
	}
	if strings.HasSuffix(strings.ToUpper(raw), "Z") {
		return strings.TrimSpace(raw[:len(raw)-1])
	}
	return raw
}
