package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	asynqmod "transportplane/pkg/asynq"
	"transportplane/pkg/config"
	"transportplane/pkg/db"
	"transportplane/pkg/logger"
	"transportplane/pkg/otelcol"
	redismod "transportplane/pkg/redis"
	"transportplane/pkg/sequence"
	"transportplane/pkg/taskname"
	"transportplane/services/audit"
	"transportplane/services/order"
	"transportplane/services/recurring"
	"transportplane/services/webhook"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		otelcol.Module,
		db.Module,
		redismod.Module,
		asynqmod.Client,
		asynqmod.Server,
		sequence.Module,
		fx.Provide(provideSnowflakeNode),
		audit.Module,
		order.Module,
		webhook.Module,
		webhook.TaskModule,
		recurring.Module,
		recurring.TaskModule,
		fx.Invoke(registerHandlers),
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(2)
}

func registerHandlers(mux *asynq.ServeMux, sweep *recurring.TaskHandler, deliver *webhook.Handler) {
	mux.HandleFunc(taskname.RecurringSweep, sweep.HandleSweepTask)
	mux.HandleFunc(taskname.WebhookDeliver, deliver.HandleDeliverTask)
}
