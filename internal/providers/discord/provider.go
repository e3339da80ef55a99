package discord

import (
	"context"
	"errors"

	"github.com/agencyops/salesboard/internal/notify"
)

// Provider posts to the chat surface. The engine only ever talks to this
// interface; which concrete surface backs it is decided at wiring time.
type Provider interface {
	PostMessage(ctx context.Context, channelID string, message string) error
	PostEmbed(ctx context.Context, channelID string, embed notify.Embed) error
}

// ErrPermissionDenied reports the bot lacks access to a channel. Callers
// log it and keep going; it never aborts a batch.
var ErrPermissionDenied = errors.New("permission_denied")

type NoOpProvider struct{}

func (p *NoOpProvider) PostMessage(ctx context.Context, channelID string, message string) error {
	return nil
}

func (p *NoOpProvider) PostEmbed(ctx context.Context, channelID string, embed notify.Embed) error {
	return nil
}
