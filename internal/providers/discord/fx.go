package discord

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/sales/domain"
)

var Module = fx.Module("providers.discord",
	fx.Provide(NewFromConfig),
	fx.Invoke(registerCommands),
)

func NewFromConfig(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Provider, error) {
	if cfg.Discord.BotToken == "" {
		log.Warn("no discord bot token configured, using noop provider")
		return &NoOpProvider{}, nil
	}

	s, err := NewSession(cfg.Discord, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Open()
		},
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})

	return s, nil
}

func registerCommands(p Provider, svc domain.Service, cfg config.Config) {
	s, ok := p.(*Session)
	if !ok {
		return
	}
	timeout := cfg.Polling.CallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.RegisterLeaderboardCommand(cfg.Discord.CommandPrefix, svc, func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), timeout)
	})
}
