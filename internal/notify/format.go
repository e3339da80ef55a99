package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/sales/domain"
)

// SourceUnavailableMessage is the friendly fallback posted to chat when the
// spreadsheet cannot be reached. Raw error detail stays in the logs.
const SourceUnavailableMessage = "Sorry, I couldn't connect to the sales data sheet right now for the leaderboard. Please try again later."

// EmojiConfig carries the display tokens used in sale notifications.
type EmojiConfig struct {
	Alarm string
	GSD   string
}

// SaleDetails is the raw per-row display data for one new-sale ping. Values
// are shown as the sheet holds them; only the premium is reformatted.
type SaleDetails struct {
	Name             string
	SaleType         string
	Premium          string
	Carrier          string
	LeadType         string
	LeadAge          string
	FieldOrTelesale  string
	DraftDate        string
	AppointmentsLeft string
}

// ClassifyTier returns the first tier the premium meets or exceeds. Tables
// are validated to end at zero, so there is always a match.
func ClassifyTier(tiers []config.Tier, premium float64) config.Tier {
	for _, tier := range tiers {
		if premium >= tier.Min {
			return tier
		}
	}
	return config.Tier{}
}

func classifySuffix(suffixes []config.Suffix, premium float64) string {
	for _, s := range suffixes {
		if premium >= s.Min {
			return s.Icon
		}
	}
	return ""
}

// LeaderboardEmbed renders a board into tiered embed fields. Rows keep
// their rank order inside each tier; the field count is hard-capped after
// tiering. The second return is false when there is nothing to display.
func LeaderboardEmbed(board domain.Board, tiers config.TierConfig, maxFields int) (Embed, bool) {
	table := tiers.Weekly
	suffixes := tiers.WeeklySuffix
	title := "🏆 Weekly Sales Leaderboard 🏆"
	period := fmt.Sprintf("Sales from %s to %s",
		board.Window.Start.Format("Jan 02, 2006"),
		board.Window.End.Format("Jan 02, 2006"),
	)
	if board.Timeframe == domain.TimeframeMonthly {
		table = tiers.Monthly
		suffixes = tiers.MonthlySuffix
		title = "📈 Monthly Sales Leaderboard 📈"
	}

	embed := Embed{
		Title:       title,
		Description: period,
		Color:       ColorGold,
		Footer: fmt.Sprintf("Total Production: $%s\nLast updated: %s",
			formatMoney(board.TeamTotal),
			board.GeneratedAt.Format("2006-01-02 3:04 PM MST"),
		),
	}

	position := 0
	for _, tier := range table {
		var members []domain.Row
		for _, row := range board.Rows {
			if ClassifyTier(table, row.Entry.PremiumTotal).Min == tier.Min {
				members = append(members, row)
			}
		}
		if len(members) == 0 {
			continue
		}
		if len(embed.Fields) >= maxFields {
			break
		}
		embed.Fields = append(embed.Fields, EmbedField{
			Name: fmt.Sprintf("--- %s %s %s ---", tier.Icon, tier.Label, tier.Icon),
		})
		for _, row := range members {
			if len(embed.Fields) >= maxFields {
				break
			}
			position++
			embed.Fields = append(embed.Fields, personField(row, position, suffixes))
		}
	}

	return embed, len(embed.Fields) > 0
}

func personField(row domain.Row, position int, suffixes []config.Suffix) EmbedField {
	prefix := "#" + strconv.Itoa(position)
	switch position {
	case 1:
		prefix = "🥇"
	case 2:
		prefix = "🥈"
	case 3:
		prefix = "🥉"
	}

	apps := "Apps"
	if row.Entry.AppCount == 1 {
		apps = "App"
	}
	return EmbedField{
		Name: fmt.Sprintf("%s %s %s", prefix, row.Name, classifySuffix(suffixes, row.Entry.PremiumTotal)),
		Value: fmt.Sprintf("Total Premium: **$%s** | **%d** %s",
			formatMoney(row.Entry.PremiumTotal), row.Entry.AppCount, apps),
	}
}

// NewSaleMessage renders the notification for one freshly appended row.
// First sales get the celebration banner.
func NewSaleMessage(d SaleDetails, firstSale bool, weekToDate float64, emoji EmojiConfig) string {
	var b strings.Builder

	if firstSale {
		fmt.Fprintf(&b, "🎉🎉%s **First Sale Alert!** %s🎉🎉\n\n", emoji.Alarm, emoji.Alarm)
		fmt.Fprintf(&b, "Congratulations to **%s** on making their very first sale!\n", d.Name)
	} else {
		fmt.Fprintf(&b, "%s **New Sale!** %s\n\n", emoji.Alarm, emoji.Alarm)
		fmt.Fprintf(&b, "%s just made a sale!\n", d.Name)
	}

	fmt.Fprintf(&b, "**Sale Type:** %s\n", orNA(d.SaleType))
	fmt.Fprintf(&b, "**Annual Premium:** $%s\n", orNA(d.Premium))
	fmt.Fprintf(&b, "**Carrier:** %s\n", orNA(d.Carrier))
	fmt.Fprintf(&b, "**Lead Type:** %s\n", orNA(d.LeadType))
	fmt.Fprintf(&b, "**Lead Age:** %s\n", orNA(d.LeadAge))
	if strings.TrimSpace(d.FieldOrTelesale) != "" {
		fmt.Fprintf(&b, "**Field/Telesale:** %s\n", d.FieldOrTelesale)
	}
	if strings.TrimSpace(d.DraftDate) != "" {
		fmt.Fprintf(&b, "**Draft Date:** %s\n", d.DraftDate)
	}
	fmt.Fprintf(&b, "**Appointments Left ➔** %s\n", orNA(d.AppointmentsLeft))
	fmt.Fprintf(&b, "**Week to Date Sales:** $%s\n\n", formatMoney(weekToDate))

	if firstSale {
		fmt.Fprintf(&b, "Welcome to the scoreboard! %s", emoji.GSD)
	} else {
		b.WriteString(emoji.GSD)
	}
	return b.String()
}

// EmptyBoardMessage is posted when a requested board has no qualifying
// sales.
func EmptyBoardMessage(tf domain.Timeframe) string {
	period := "week"
	if tf == domain.TimeframeMonthly {
		period = "month"
	}
	return fmt.Sprintf("No sales recorded yet this %s.", period)
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

// formatMoney renders 12345.6 as "12,345.60".
func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := strings.Join(groups, ",") + frac
	if neg {
		out = "-" + out
	}
	return out
}
