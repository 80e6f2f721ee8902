package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"transportplane/internal/httpapi"
	asynqmod "transportplane/pkg/asynq"
	"transportplane/pkg/config"
	"transportplane/pkg/db"
	"transportplane/pkg/health"
	"transportplane/pkg/logger"
	"transportplane/pkg/otelcol"
	redismod "transportplane/pkg/redis"
	"transportplane/pkg/sequence"
	"transportplane/pkg/server"
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
		sequence.Module,
		health.Module,
		fx.Provide(provideSnowflakeNode),
		audit.Module,
		order.Module,
		webhook.Module,
		recurring.Module,
		httpapi.Module,
		server.Module,
		fx.Invoke(db.Otel, db.Metric),
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
