package recurring

import (
	"context"
	"errors"

	"transportplane/pkg/config"
	"transportplane/pkg/db/option"
	"transportplane/pkg/errutil"
	"transportplane/pkg/repository"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TaskHandler runs the periodic sweep: every active, non-expired template
// whose cursor is due gets one Generate call. A stale template is caught up
// one occurrence per sweep, so missed occurrences are emitted exactly once.
type TaskHandler struct {
	svc       *Service
	templates repository.Repository[RecurringTemplate]
	cfg       *config.Config
}

type TaskHandlerParams struct {
	fx.In
	DB      *gorm.DB
	Service *Service
	Config  *config.Config
}

func NewTaskHandler(p TaskHandlerParams) *TaskHandler {
	return &TaskHandler{
		svc:       p.Service,
		templates: repository.ProvideStore[RecurringTemplate](p.DB),
		cfg:       p.Config,
	}
}

func (h *TaskHandler) HandleSweepTask(ctx context.Context, t *asynq.Task) error {
	now := h.svc.now()

	due, err := h.templates.Find(ctx, &RecurringTemplate{IsActive: true},
		option.ApplyOperator(option.Condition{Field: "next_generation_date", Operator: option.LTE, Value: now}),
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where("end_date IS NULL OR end_date >= ?", now)
		},
	)
	if err != nil {
		zap.L().Error("failed to select due templates", zap.Error(err))
		return err
	}
	if len(due) == 0 {
		return nil
	}

	zap.L().Info("sweeping due templates", zap.Int("count", len(due)))

	g, gctx := errgroup.WithContext(ctx)
	concurrency := h.cfg.Sweep.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for _, tpl := range due {
		tpl := tpl
		g.Go(func() error {
			_, err := h.svc.Generate(gctx, tpl.TenantID, tpl.TemplateID, Overrides{})
			if err == nil {
				return nil
			}

			var base errutil.BaseError
			if errors.As(err, &base) {
				switch base.Code {
				case errutil.StatusConflict:
					// Another worker advanced this template. Its turn.
					return nil
				case errutil.StatusUnprocessableEntity, errutil.StatusNotFound:
					// Deactivated or expired between the select and the call.
					return nil
				}
			}

			zap.L().Error("sweep generation failed",
				zap.String("tenant_id", tpl.TenantID),
				zap.String("template_id", tpl.TemplateID),
				zap.Error(err),
			)
			// Keep sweeping the rest; the next sweep retries this template.
			return nil
		})
	}

	return g.Wait()
}
