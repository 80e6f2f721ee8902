package audit

import (
	"context"
	"encoding/json"
	"time"

	"transportplane/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var Module = fx.Module("audit.module",
	fx.Provide(NewRecorder),
)

// Recorder is the write-only audit sink. Record is fire-and-forget: a failed
// write is logged and swallowed so it can never fail the operation being
// audited.
type Recorder struct {
	node *snowflake.Node
	logs repository.Repository[AuditLog]
}

type RecorderParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewRecorder(p RecorderParams) *Recorder {
	return &Recorder{
		node: p.Node,
		logs: repository.ProvideStore[AuditLog](p.DB),
	}
}

func (r *Recorder) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string, metadata map[string]any) {
	meta, err := json.Marshal(metadata)
	if err != nil {
		meta = []byte("{}")
	}

	entry := &AuditLog{
		ID:         r.node.Generate().String(),
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   datatypes.JSON(meta),
		CreatedAt:  time.Now(),
	}

	if err := r.logs.Create(ctx, entry); err != nil {
		zap.L().Error("failed to write audit entry",
			zap.String("tenant_id", tenantID),
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}
