package sheets

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/config"
)

var Module = fx.Module("providers.sheets",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Source, error) {
	if cfg.Sheet.CredentialsFile == "" {
		log.Warn("no spreadsheet credentials configured, using noop source")
		return NoOpSource{}, nil
	}
	return NewGoogleSource(context.Background(), cfg.Sheet, log)
}
