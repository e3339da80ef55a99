package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/agencyops/salesboard/internal/clock"
	"github.com/agencyops/salesboard/internal/config"
	"github.com/agencyops/salesboard/internal/observability"
	"github.com/agencyops/salesboard/internal/poller"
	"github.com/agencyops/salesboard/internal/providers"
	"github.com/agencyops/salesboard/internal/sales"
	"github.com/agencyops/salesboard/internal/scheduler"
	"github.com/agencyops/salesboard/internal/server"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		server.Module,

		// Functional Domains
		providers.Module,
		sales.Module,
		poller.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
