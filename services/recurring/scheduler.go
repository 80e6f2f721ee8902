package recurring

import (
	"context"
	"errors"
	"time"

	"transportplane/pkg/config"
	"transportplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RegisterScheduler enqueues the sweep task on a fixed interval. The unique
// option keeps overlapping ticks from stacking up when a sweep runs long.
func RegisterScheduler(lc fx.Lifecycle, client *asynq.Client, cfg *config.Config) {
	interval := cfg.Sweep.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				enqueue := func() {
					task := asynq.NewTask(taskname.RecurringSweep, nil)
					_, err := client.Enqueue(task,
						asynq.Queue("low"),
						asynq.Unique(interval),
					)
					if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
						zap.L().Error("failed to enqueue sweep task", zap.Error(err))
					}
				}

				enqueue()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						enqueue()
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}
