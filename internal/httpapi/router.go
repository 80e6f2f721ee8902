package httpapi

import (
	"net/http"
	"time"

	"transportplane/pkg/config"
	"transportplane/pkg/errutil"
	"transportplane/pkg/health"
	"transportplane/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		NewTemplateHandler,
		NewOrderHandler,
		NewWebhookHandler,
		NewRouter,
	),
)

const actorHeader = "X-Actor-ID"

type RouterParams struct {
	fx.In
	Config   *config.Config
	Health   health.HealthService
	Handlers Handlers
}

type Handlers struct {
	fx.In
	Templates *TemplateHandler
	Orders    *OrderHandler
	Webhooks  *WebhookHandler
}

// NewRouter assembles the gin engine behind pkg/server's http.Server.
func NewRouter(p RouterParams) http.Handler {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)

	v1 := r.Group("/v1", middleware.Tenant(), middleware.Error())
	{
		templates := v1.Group("/recurring-templates")
		templates.POST("", p.Handlers.Templates.Create)
		templates.GET("", p.Handlers.Templates.List)
		templates.GET("/:id", p.Handlers.Templates.Get)
		templates.PUT("/:id", p.Handlers.Templates.Update)
		templates.DELETE("/:id", p.Handlers.Templates.Deactivate)
		templates.POST("/:id/generate", p.Handlers.Templates.Generate)

		orders := v1.Group("/orders")
		orders.POST("", p.Handlers.Orders.Create)
		orders.GET("", p.Handlers.Orders.List)
		orders.GET("/:id", p.Handlers.Orders.Get)

		webhooks := v1.Group("/webhooks")
		webhooks.POST("", p.Handlers.Webhooks.Create)
		webhooks.GET("", p.Handlers.Webhooks.List)
		webhooks.DELETE("/:id", p.Handlers.Webhooks.Delete)
	}

	return r
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errutil.BadRequest("dates must use YYYY-MM-DD", err)
	}
	return d, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
