package recurring

import "go.uber.org/fx"

var Module = fx.Module("recurring.module",
	fx.Provide(NewService),
)

// TaskModule wires the sweep worker and its scheduler. Only the sweeper
// binary loads it.
var TaskModule = fx.Module("recurring.task",
	fx.Provide(NewTaskHandler),
	fx.Invoke(RegisterScheduler),
)
