package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/notify"
	"github.com/agencyops/salesboard/internal/sales/domain"
)

// Session is the discordgo-backed Provider.
type Session struct {
	dg  *discordgo.Session
	log *zap.Logger
}

// NewSession builds the gateway session. The connection is opened by the
// lifecycle hook in fx.go, not here.
func NewSession(cfg config.DiscordConfig, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return &Session{dg: dg, log: log.Named("discord")}, nil
}

// Open connects to the gateway.
func (s *Session) Open() error {
	return s.dg.Open()
}

// Close tears the gateway connection down.
func (s *Session) Close() error {
	return s.dg.Close()
}

func (s *Session) PostMessage(ctx context.Context, channelID string, message string) error {
	_, err := s.dg.ChannelMessageSend(channelID, message, discordgo.WithContext(ctx))
	return s.mapError(channelID, err)
}

func (s *Session) PostEmbed(ctx context.Context, channelID string, embed notify.Embed) error {
	_, err := s.dg.ChannelMessageSendEmbed(channelID, toMessageEmbed(embed), discordgo.WithContext(ctx))
	return s.mapError(channelID, err)
}

// RegisterLeaderboardCommand wires the chat command that posts a board on
// demand. Thin glue only; all decisions live in the sales service.
func (s *Session) RegisterLeaderboardCommand(prefix string, svc domain.Service, callTimeout callTimeoutFunc) {
	command := prefix + "leaderboard"
	s.dg.AddHandler(func(dg *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		content := strings.TrimSpace(m.Content)
		if !strings.HasPrefix(content, command) {
			return
		}
		tf := domain.TimeframeWeekly
		if strings.Contains(strings.TrimPrefix(content, command), "month") {
			tf = domain.TimeframeMonthly
		}

		ctx, cancel := callTimeout()
		defer cancel()
		if err := svc.PostLeaderboard(ctx, m.ChannelID, tf); err != nil {
			s.log.Warn("leaderboard command failed",
				zap.String("channel_id", m.ChannelID),
				zap.String("timeframe", string(tf)),
				zap.Error(err),
			)
		}
	})
}

type callTimeoutFunc func() (context.Context, context.CancelFunc)

func toMessageEmbed(embed notify.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}
	for _, f := range embed.Fields {
		value := f.Value
		if value == "" {
			// Discord rejects empty field values; headers stay name-only.
			value = "​"
		}
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  value,
			Inline: f.Inline,
		})
	}
	if embed.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}
	return out
}

func (s *Session) mapError(channelID string, err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		s.log.Warn("missing permission to post in channel", zap.String("channel_id", channelID))
		return fmt.Errorf("%w: channel %s", ErrPermissionDenied, channelID)
	}
	return fmt.Errorf("post to channel %s: %w", channelID, err)
}
