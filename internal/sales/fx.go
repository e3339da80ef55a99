package sales

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/salesboard/internal/clock"
	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/sales/domain"
	"github.com/agencyops/salesboard/internal/sales/normalize"
	"github.com/agencyops/salesboard/internal/sales/service"
)

// Module wires the normalizer and the sales service.
var Module = fx.Module("sales",
	fx.Provide(
		func(cfg config.Config, zc *clock.ZonedClock, log *zap.Logger) *normalize.Normalizer {
			return normalize.New(zc.Location(), cfg.Display.ExtraLayouts, log)
		},
		service.New,
		func(s *service.Service) domain.Service { return s },
	),
)
