package audit

import (
	"time"

	"gorm.io/datatypes"
)

// Common actions recorded by the engine.
const (
	ActionOrderCreated     = "order.created"
	ActionTemplateAdvanced = "recurring_template.advanced"
	ActionTemplateCreated  = "recurring_template.created"
	ActionTemplateUpdated  = "recurring_template.updated"
)

type AuditLog struct {
	ID         string         `gorm:"column:id;primaryKey"`
	TenantID   string         `gorm:"column:tenant_id;index"`
	ActorID    string         `gorm:"column:actor_id"`
	Action     string         `gorm:"column:action"`
	EntityType string         `gorm:"column:entity_type"`
	EntityID   string         `gorm:"column:entity_id;index"`
	Metadata   datatypes.JSON `gorm:"column:metadata"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
