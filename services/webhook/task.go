package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"transportplane/pkg/config"
	"transportplane/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	headerEvent     = "X-Transportplane-Event"
	headerSignature = "X-Transportplane-Signature"
)

// Handler delivers queued webhook events over HTTP. Every attempt is
// recorded as a Delivery row; a non-2xx response returns an error so
// asynq retries with backoff.
type Handler struct {
	http       *http.Client
	node       *snowflake.Node
	subs       repository.Repository[Subscription]
	deliveries repository.Repository[Delivery]
}

type HandlerParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		http:       &http.Client{Timeout: p.Config.Webhook.Timeout},
		node:       p.Node,
		subs:       repository.ProvideStore[Subscription](p.DB),
		deliveries: repository.ProvideStore[Delivery](p.DB),
	}
}

// Sign computes the hex HMAC-SHA256 of body keyed by secret. Receivers
// recompute it to verify the payload origin.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *Handler) HandleDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload deliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal webhook delivery payload: %w", err)
	}

	sub, err := h.subs.FindOne(ctx, &Subscription{SubscriptionID: payload.SubscriptionID})
	if err != nil {
		return err
	}
	if sub == nil || !sub.IsActive {
		// Subscription removed between enqueue and delivery. Drop silently.
		return nil
	}

	statusCode, deliverErr := h.post(ctx, sub, payload)

	record := &Delivery{
		DeliveryID:     h.node.Generate().String(),
		TenantID:       payload.TenantID,
		SubscriptionID: sub.SubscriptionID,
		Event:          payload.Event,
		Payload:        datatypes.JSON(payload.Body),
		StatusCode:     statusCode,
		Success:        deliverErr == nil,
		AttemptedAt:    time.Now(),
	}
	if deliverErr != nil {
		record.Error = deliverErr.Error()
	}

	if err := h.deliveries.Create(ctx, record); err != nil {
		zap.L().Error("failed to record webhook delivery",
			zap.String("subscription_id", sub.SubscriptionID),
			zap.Error(err),
		)
	}

	return deliverErr
}

func (h *Handler) post(ctx context.Context, sub *Subscription, payload deliverPayload) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(payload.Body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEvent, payload.Event)
	req.Header.Set(headerSignature, Sign(sub.Secret, payload.Body))

	resp, err := h.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
