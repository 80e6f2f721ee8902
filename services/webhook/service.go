package webhook

import (
	"context"
	"net/url"
	"strings"
	"time"

	"transportplane/pkg/db/option"
	"transportplane/pkg/errutil"
	"transportplane/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages tenant webhook subscriptions.
type Service struct {
	node *snowflake.Node
	subs repository.Repository[Subscription]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node: p.Node,
		subs: repository.ProvideStore[Subscription](p.DB),
	}
}

type CreateSubscriptionRequest struct {
	TenantID string
	URL      string
	Secret   string
	Events   []string
}

func (s *Service) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	u, err := url.Parse(req.URL)
	if err != nil || u.Scheme != "https" && u.Scheme != "http" || u.Host == "" {
		return nil, errutil.BadRequest("url must be a valid http(s) endpoint", err)
	}

	if strings.TrimSpace(req.Secret) == "" {
		return nil, errutil.BadRequest("secret is required", nil)
	}

	events := req.Events
	if len(events) == 0 {
		events = []string{"*"}
	}

	now := time.Now()
	sub := &Subscription{
		SubscriptionID: s.node.Generate().String(),
		TenantID:       req.TenantID,
		URL:            req.URL,
		Secret:         req.Secret,
		Events:         strings.Join(events, ","),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		zap.L().Error("failed to create webhook subscription", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, errutil.Internal("failed to create webhook subscription", err)
	}

	return sub, nil
}

func (s *Service) ListSubscriptions(ctx context.Context, tenantID string) ([]*Subscription, error) {
	subs, err := s.subs.Find(ctx, &Subscription{TenantID: tenantID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
	)
	if err != nil {
		zap.L().Error("failed to list webhook subscriptions", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, errutil.Internal("failed to list webhook subscriptions", err)
	}
	return subs, nil
}

// DeleteSubscription deactivates the endpoint. Rows are kept so past
// delivery logs stay attributable.
func (s *Service) DeleteSubscription(ctx context.Context, tenantID, subscriptionID string) error {
	sub, err := s.subs.FindOne(ctx, &Subscription{TenantID: tenantID, SubscriptionID: subscriptionID})
	if err != nil {
		return errutil.Internal("failed to get webhook subscription", err)
	}
	if sub == nil {
		return errutil.NotFound("webhook subscription not found", nil)
	}

	if err := s.subs.Update(ctx, sub.SubscriptionID, map[string]any{
		"is_active":  false,
		"updated_at": time.Now(),
	}); err != nil {
		return errutil.Internal("failed to deactivate webhook subscription", err)
	}
	return nil
}
