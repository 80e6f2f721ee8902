package webhook

import "go.uber.org/fx"

var Module = fx.Module("webhook.module",
	fx.Provide(
		NewService,
		NewNotifier,
	),
)

// TaskModule wires the delivery worker. Only the sweeper binary loads it.
var TaskModule = fx.Module("webhook.task",
	fx.Provide(NewHandler),
)
