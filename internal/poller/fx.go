package poller

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("poller",
	fx.Provide(New),
	fx.Invoke(StartPoller),
)

// StartPoller runs the poll loop for the lifetime of the app. The cancel
// hook is registered up front; a hook appended during OnStart would never
// be stopped.
func StartPoller(lc fx.Lifecycle, p *Poller) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go p.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
