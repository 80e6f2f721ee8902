package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"transportplane/pkg/repository"
	"transportplane/pkg/taskname"
	"transportplane/services/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Subscription{}, &Delivery{})
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	h := &Handler{
		http:       &http.Client{Timeout: 5 * time.Second},
		node:       node,
		subs:       repository.ProvideStore[Subscription](db),
		deliveries: repository.ProvideStore[Delivery](db),
	}
	return h, db
}

func seedSubscription(t *testing.T, db *gorm.DB, url string) *Subscription {
	t.Helper()
	sub := &Subscription{
		SubscriptionID: "sub-1",
		TenantID:       "tenant-1",
		URL:            url,
		Secret:         "s3cret",
		Events:         "*",
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func deliverTask(t *testing.T, subscriptionID string, body []byte) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(deliverPayload{
		SubscriptionID: subscriptionID,
		TenantID:       "tenant-1",
		Event:          EventOrderCreated,
		Body:           body,
	})
	require.NoError(t, err)
	return asynq.NewTask(taskname.WebhookDeliver, payload)
}

func TestSignDeterministic(t *testing.T) {
	body := []byte(`{"order_id":"1"}`)
	require.Equal(t, Sign("s3cret", body), Sign("s3cret", body))
	require.NotEqual(t, Sign("s3cret", body), Sign("other", body))
}

func TestHandleDeliverTaskSuccess(t *testing.T) {
	h, db := newTestHandler(t)
	body := []byte(`{"order_id":"42"}`)

	var gotSignature, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(headerSignature)
		gotEvent = r.Header.Get(headerEvent)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sub := seedSubscription(t, db, srv.URL)

	require.NoError(t, h.HandleDeliverTask(context.Background(), deliverTask(t, sub.SubscriptionID, body)))

	require.Equal(t, Sign(sub.Secret, body), gotSignature)
	require.Equal(t, EventOrderCreated, gotEvent)
	require.JSONEq(t, string(body), string(gotBody))

	var record Delivery
	require.NoError(t, db.First(&record, "subscription_id = ?", sub.SubscriptionID).Error)
	require.True(t, record.Success)
	require.Equal(t, http.StatusOK, record.StatusCode)
	require.Empty(t, record.Error)
}

func TestHandleDeliverTaskEndpointFailure(t *testing.T) {
	h, db := newTestHandler(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sub := seedSubscription(t, db, srv.URL)

	err := h.HandleDeliverTask(context.Background(), deliverTask(t, sub.SubscriptionID, []byte(`{}`)))
	require.Error(t, err)

	var record Delivery
	require.NoError(t, db.First(&record, "subscription_id = ?", sub.SubscriptionID).Error)
	require.False(t, record.Success)
	require.Equal(t, http.StatusInternalServerError, record.StatusCode)
	require.NotEmpty(t, record.Error)
}

func TestHandleDeliverTaskDropsRemovedSubscription(t *testing.T) {
	h, db := newTestHandler(t)

	// Unknown subscription: the task is consumed without an attempt.
	require.NoError(t, h.HandleDeliverTask(context.Background(), deliverTask(t, "missing", []byte(`{}`))))

	sub := seedSubscription(t, db, "https://example.com/hook")
	require.NoError(t, db.Model(&Subscription{}).Where("subscription_id = ?", sub.SubscriptionID).Update("is_active", false).Error)

	require.NoError(t, h.HandleDeliverTask(context.Background(), deliverTask(t, sub.SubscriptionID, []byte(`{}`))))

	var count int64
	require.NoError(t, db.Model(&Delivery{}).Count(&count).Error)
	require.Zero(t, count)
}
