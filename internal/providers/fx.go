package providers

import (
	"go.uber.org/fx"

	"github.com/agencyops/salesboard/internal/providers/discord"
	"github.com/agencyops/salesboard/internal/providers/sheets"
)

var Module = fx.Module("providers",
	sheets.Module,
	discord.Module,
)
