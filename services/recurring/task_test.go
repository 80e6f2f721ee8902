package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"transportplane/pkg/config"
	"transportplane/pkg/taskname"
	"transportplane/services/order"
	"transportplane/services/testutil"
)

func newTestTaskHandler(t *testing.T) (*TaskHandler, *Service) {
	t.Helper()

	db := testutil.NewTestDB(t, &RecurringTemplate{}, &order.Order{})
	svc, _, _ := newTestService(t, db)

	cfg := &config.Config{}
	cfg.Sweep.Concurrency = 2

	h := NewTaskHandler(TaskHandlerParams{DB: db, Service: svc, Config: cfg})
	return h, svc
}

func sweepTask() *asynq.Task {
	return asynq.NewTask(taskname.RecurringSweep, nil)
}

func TestSweepGeneratesOnlyDueTemplates(t *testing.T) {
	h, svc := newTestTaskHandler(t)
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	due := monthlyTemplate()
	due.TemplateID = "tpl-due-01"
	due.Code = "TPL-DUE-01"
	due.NextGenerationDate = time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	seedTemplate(t, svc.db, due)

	future := monthlyTemplate()
	future.TemplateID = "tpl-future"
	future.Code = "TPL-FUT-01"
	future.NextGenerationDate = time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC)
	seedTemplate(t, svc.db, future)

	expired := monthlyTemplate()
	expired.TemplateID = "tpl-expired"
	expired.Code = "TPL-EXP-01"
	expired.NextGenerationDate = time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	expired.EndDate = &end
	seedTemplate(t, svc.db, expired)

	inactive := monthlyTemplate()
	inactive.TemplateID = "tpl-inactive"
	inactive.Code = "TPL-INA-01"
	inactive.IsActive = false
	inactive.NextGenerationDate = time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	seedTemplate(t, svc.db, inactive)

	require.NoError(t, h.HandleSweepTask(context.Background(), sweepTask()))

	var orderCount int64
	require.NoError(t, svc.db.Model(&order.Order{}).Count(&orderCount).Error)
	require.Equal(t, int64(1), orderCount)

	// Fresh destination per reload; a populated primary key would leak into
	// the next query's conditions.
	var reloadedDue RecurringTemplate
	require.NoError(t, svc.db.First(&reloadedDue, "template_id = ?", due.TemplateID).Error)
	require.Equal(t, 1, reloadedDue.GeneratedOrdersCount)

	var reloadedFuture RecurringTemplate
	require.NoError(t, svc.db.First(&reloadedFuture, "template_id = ?", future.TemplateID).Error)
	require.Equal(t, 0, reloadedFuture.GeneratedOrdersCount)

	var reloadedExpired RecurringTemplate
	require.NoError(t, svc.db.First(&reloadedExpired, "template_id = ?", expired.TemplateID).Error)
	require.Equal(t, 0, reloadedExpired.GeneratedOrdersCount)
}

func TestSweepBackfillsOneOccurrencePerRun(t *testing.T) {
	h, svc := newTestTaskHandler(t)
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Cursor three months behind: each sweep emits exactly one missed
	// occurrence until the template catches up.
	stale := monthlyTemplate()
	stale.NextGenerationDate = time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	seedTemplate(t, svc.db, stale)

	require.NoError(t, h.HandleSweepTask(context.Background(), sweepTask()))
	require.NoError(t, h.HandleSweepTask(context.Background(), sweepTask()))

	var reloaded RecurringTemplate
	require.NoError(t, svc.db.First(&reloaded, "template_id = ?", stale.TemplateID).Error)
	require.Equal(t, 2, reloaded.GeneratedOrdersCount)
	require.True(t, reloaded.NextGenerationDate.Equal(time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)))

	var orders []*order.Order
	require.NoError(t, svc.db.Order("loading_date asc").Find(&orders).Error)
	require.Len(t, orders, 2)
	require.True(t, orders[0].LoadingDate.Equal(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
	require.True(t, orders[1].LoadingDate.Equal(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)))
}

func TestSweepEmptyDueSet(t *testing.T) {
	h, svc := newTestTaskHandler(t)
	svc.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, h.HandleSweepTask(context.Background(), sweepTask()))

	var orderCount int64
	require.NoError(t, svc.db.Model(&order.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)
}
