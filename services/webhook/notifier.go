package webhook

import (
	"context"
	"encoding/json"
	"time"

	"transportplane/pkg/config"
	"transportplane/pkg/repository"
	"transportplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deliverPayload is the asynq task body for a single delivery attempt.
type deliverPayload struct {
	SubscriptionID string          `json:"subscription_id"`
	TenantID       string          `json:"tenant_id"`
	Event          string          `json:"event"`
	Body           json.RawMessage `json:"body"`
}

// Notifier fans events out to the tenant's matching subscriptions by
// enqueueing one delivery task per endpoint. Publish never blocks the
// caller on network I/O; the asynq worker does the HTTP POST.
type Notifier struct {
	client *asynq.Client
	subs   repository.Repository[Subscription]
	cfg    *config.Config
}

type NotifierParams struct {
	fx.In
	DB     *gorm.DB
	Client *asynq.Client
	Config *config.Config
}

func NewNotifier(p NotifierParams) *Notifier {
	return &Notifier{
		client: p.Client,
		subs:   repository.ProvideStore[Subscription](p.DB),
		cfg:    p.Config,
	}
}

func (n *Notifier) Publish(ctx context.Context, tenantID, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	subs, err := n.subs.Find(ctx, &Subscription{TenantID: tenantID, IsActive: true})
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if !sub.Matches(event) {
			continue
		}

		taskBody, err := json.Marshal(deliverPayload{
			SubscriptionID: sub.SubscriptionID,
			TenantID:       tenantID,
			Event:          event,
			Body:           body,
		})
		if err != nil {
			return err
		}

		task := asynq.NewTask(taskname.WebhookDeliver, taskBody)
		if _, err := n.client.EnqueueContext(ctx, task,
			asynq.MaxRetry(n.cfg.Webhook.MaxRetry),
			asynq.Timeout(n.cfg.Webhook.Timeout+5*time.Second),
			asynq.Queue("default"),
		); err != nil {
			zap.L().Error("failed to enqueue webhook delivery",
				zap.String("tenant_id", tenantID),
				zap.String("subscription_id", sub.SubscriptionID),
				zap.String("event", event),
				zap.Error(err),
			)
			return err
		}
	}

	return nil
}
