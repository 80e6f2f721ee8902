package audit

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transportplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRecordWritesEntry(t *testing.T) {
	db := testutil.NewTestDB(t, &AuditLog{})
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	rec := NewRecorder(RecorderParams{DB: db, Node: node})
	rec.Record(context.Background(), "tenant-1", "user-1", ActionOrderCreated, "order", "ord-1", map[string]any{
		"order_number": "REC-123456-0001",
	})

	var entry AuditLog
	require.NoError(t, db.First(&entry, "entity_id = ?", "ord-1").Error)
	require.Equal(t, "tenant-1", entry.TenantID)
	require.Equal(t, ActionOrderCreated, entry.Action)
	require.JSONEq(t, `{"order_number":"REC-123456-0001"}`, string(entry.Metadata))
}

func TestRecordSwallowsFailure(t *testing.T) {
	db := testutil.NewTestDB(t, &AuditLog{})
	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	sql, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sql.Close())

	rec := NewRecorder(RecorderParams{DB: db, Node: node})

	// Must not panic or surface the write failure.
	rec.Record(context.Background(), "tenant-1", "", ActionTemplateAdvanced, "recurring_template", "tpl-1", nil)
}
