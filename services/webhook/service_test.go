package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"transportplane/pkg/errutil"
	"transportplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestWebhookService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Subscription{}, &Delivery{})
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node}), db
}

func requireStatus(t *testing.T, err error, status errutil.CoreStatus) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, status, be.Status())
}

func TestCreateSubscriptionValidation(t *testing.T) {
	svc, _ := newTestWebhookService(t)
	ctx := context.Background()

	_, err := svc.CreateSubscription(ctx, CreateSubscriptionRequest{TenantID: "tenant-1", URL: "not a url", Secret: "s3cret"})
	requireStatus(t, err, errutil.StatusBadRequest)

	_, err = svc.CreateSubscription(ctx, CreateSubscriptionRequest{TenantID: "tenant-1", URL: "ftp://example.com", Secret: "s3cret"})
	requireStatus(t, err, errutil.StatusBadRequest)

	_, err = svc.CreateSubscription(ctx, CreateSubscriptionRequest{TenantID: "tenant-1", URL: "https://example.com/hook", Secret: "  "})
	requireStatus(t, err, errutil.StatusBadRequest)
}

func TestCreateSubscriptionDefaultsToAllEvents(t *testing.T) {
	svc, _ := newTestWebhookService(t)

	sub, err := svc.CreateSubscription(context.Background(), CreateSubscriptionRequest{
		TenantID: "tenant-1",
		URL:      "https://example.com/hook",
		Secret:   "s3cret",
	})
	require.NoError(t, err)
	require.True(t, sub.IsActive)
	require.Equal(t, "*", sub.Events)
	require.True(t, sub.Matches(EventOrderCreated))
	require.True(t, sub.Matches(EventTemplateUpdated))
}

func TestSubscriptionMatches(t *testing.T) {
	sub := &Subscription{Events: "order.created, recurring_template.created"}
	require.True(t, sub.Matches(EventOrderCreated))
	require.True(t, sub.Matches(EventTemplateCreated))
	require.False(t, sub.Matches(EventTemplateUpdated))
}

func TestDeleteSubscriptionDeactivates(t *testing.T) {
	svc, db := newTestWebhookService(t)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, CreateSubscriptionRequest{
		TenantID: "tenant-1",
		URL:      "https://example.com/hook",
		Secret:   "s3cret",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubscription(ctx, "tenant-1", sub.SubscriptionID))

	var reloaded Subscription
	require.NoError(t, db.First(&reloaded, "subscription_id = ?", sub.SubscriptionID).Error)
	require.False(t, reloaded.IsActive)

	err = svc.DeleteSubscription(ctx, "tenant-1", "missing")
	requireStatus(t, err, errutil.StatusNotFound)
}
