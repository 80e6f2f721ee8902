package httpapi

import (
	"net/http"

	"transportplane/pkg/errutil"
	"transportplane/pkg/middleware"
	"transportplane/services/webhook"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type WebhookHandler struct {
	svc *webhook.Service
}

type WebhookHandlerParams struct {
	fx.In
	Service *webhook.Service
}

func NewWebhookHandler(p WebhookHandlerParams) *WebhookHandler {
	return &WebhookHandler{svc: p.Service}
}

type webhookRequest struct {
	URL    string   `json:"url"`
	Secret string   `json:"secret"`
	Events []string `json:"events"`
}

// webhookResponse hides the shared secret from reads.
type webhookResponse struct {
	SubscriptionID string `json:"subscription_id"`
	URL            string `json:"url"`
	Events         string `json:"events"`
	IsActive       bool   `json:"is_active"`
}

func toWebhookResponse(sub *webhook.Subscription) webhookResponse {
	return webhookResponse{
		SubscriptionID: sub.SubscriptionID,
		URL:            sub.URL,
		Events:         sub.Events,
		IsActive:       sub.IsActive,
	}
}

func (h *WebhookHandler) Create(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	ctx := c.Request.Context()
	sub, err := h.svc.CreateSubscription(ctx, webhook.CreateSubscriptionRequest{
		TenantID: middleware.TenantFromContext(ctx),
		URL:      req.URL,
		Secret:   req.Secret,
		Events:   req.Events,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toWebhookResponse(sub))
}

func (h *WebhookHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	subs, err := h.svc.ListSubscriptions(ctx, middleware.TenantFromContext(ctx))
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]webhookResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toWebhookResponse(sub))
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": out})
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.DeleteSubscription(ctx, middleware.TenantFromContext(ctx), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
