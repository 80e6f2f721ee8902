package webhook

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Event names published by the platform.
const (
	EventOrderCreated    = "order.created"
	EventTemplateCreated = "recurring_template.created"
	EventTemplateUpdated = "recurring_template.updated"
)

// Subscription is a tenant-registered webhook endpoint. Events holds a
// comma-separated list of event names; "*" subscribes to everything.
type Subscription struct {
	SubscriptionID string    `gorm:"column:subscription_id;primaryKey"`
	TenantID       string    `gorm:"column:tenant_id;index"`
	URL            string    `gorm:"column:url"`
	Secret         string    `gorm:"column:secret"`
	Events         string    `gorm:"column:events"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Subscription) TableName() string { return "webhook_subscriptions" }

// Matches reports whether the subscription wants the given event.
func (s *Subscription) Matches(event string) bool {
	for _, e := range strings.Split(s.Events, ",") {
		e = strings.TrimSpace(e)
		if e == "*" || e == event {
			return true
		}
	}
	return false
}

// Delivery is one attempt log row for a published event.
type Delivery struct {
	DeliveryID     string         `gorm:"column:delivery_id;primaryKey"`
	TenantID       string         `gorm:"column:tenant_id;index"`
	SubscriptionID string         `gorm:"column:subscription_id;index"`
	Event          string         `gorm:"column:event"`
	Payload        datatypes.JSON `gorm:"column:payload"`
	StatusCode     int            `gorm:"column:status_code"`
	Success        bool           `gorm:"column:success"`
	Error          string         `gorm:"column:error"`
	AttemptedAt    time.Time      `gorm:"column:attempted_at"`
}

func (Delivery) TableName() string { return "webhook_deliveries" }
