package config

import (
	"go.uber.org/fx"

	"github.com/agencyops/salesboard/internal/clock"
)

// Module wires application configuration and the tier tables.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewTierConfigHolder,
		func(cfg Config) clock.TimeZone { return clock.TimeZone(cfg.TimeZone) },
	),
	fx.Invoke(func(cfg Config) error { return cfg.Validate() }),
)
