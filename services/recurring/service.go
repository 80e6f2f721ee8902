package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"transportplane/pkg/db/option"
	"transportplane/pkg/errutil"
	"transportplane/pkg/repository"
	"transportplane/pkg/sequence"
	"transportplane/services/audit"
	"transportplane/services/order"
	"transportplane/services/webhook"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditSink interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string, metadata map[string]any)
}

type eventPublisher interface {
	Publish(ctx context.Context, tenantID, event string, payload any) error
}

// Service owns recurring templates and the generation engine. All cursor
// movement happens in Generate, inside one transaction with the order insert.
type Service struct {
	db        *gorm.DB
	node      *snowflake.Node
	seq       sequence.Generator
	templates repository.Repository[RecurringTemplate]
	orders    repository.Repository[order.Order]
	audit     auditSink
	events    eventPublisher

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Sequence sequence.Generator
	Audit    *audit.Recorder
	Notifier *webhook.Notifier
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		seq:       p.Sequence,
		templates: repository.ProvideStore[RecurringTemplate](p.DB),
		orders:    repository.ProvideStore[order.Order](p.DB),
		audit:     p.Audit,
		events:    p.Notifier,
		now:       time.Now,
	}
}

type CreateTemplateRequest struct {
	TenantID string
	ActorID  string
	Name     string

	Frequency  Frequency
	DayOfWeek  *int
	DayOfMonth *int

	StartDate time.Time
	EndDate   *time.Time

	OriginAddress      string
	DestinationAddress string
	CargoDescription   string
	CargoWeightKg      float64
	VehicleType        string
	PriceAmount        int64
	CurrencyCode       string
	ContractorID       string

	LoadingTimeFrom     string
	LoadingTimeTo       string
	UnloadingOffsetDays int

	InternalNotes string
}

func (s *Service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*RecurringTemplate, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("tenant_id", req.TenantID),
	)

	if strings.TrimSpace(req.Name) == "" {
		return nil, errutil.BadRequest("name is required", nil)
	}
	if req.StartDate.IsZero() {
		return nil, errutil.BadRequest("start_date is required", nil)
	}

	rule := Rule{Frequency: req.Frequency, DayOfWeek: req.DayOfWeek, DayOfMonth: req.DayOfMonth}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, errutil.ValidationFailed("end_date must not be before start_date", nil)
	}

	code, err := s.seq.NextTemplateCode(ctx, req.TenantID)
	if err != nil {
		zapLog.Error("failed to mint template code", zap.Error(err))
		return nil, errutil.Internal("failed to mint template code", err)
	}

	now := s.now()
	tpl := &RecurringTemplate{
		TemplateID: s.node.Generate().String(),
		TenantID:   req.TenantID,
		Code:       code,
		Name:       req.Name,

		Frequency:  req.Frequency,
		DayOfWeek:  req.DayOfWeek,
		DayOfMonth: req.DayOfMonth,

		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,

		NextGenerationDate: rule.NextAfter(req.StartDate, now),

		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		CargoDescription:   req.CargoDescription,
		CargoWeightKg:      req.CargoWeightKg,
		VehicleType:        req.VehicleType,
		PriceAmount:        req.PriceAmount,
		CurrencyCode:       req.CurrencyCode,
		ContractorID:       req.ContractorID,

		LoadingTimeFrom:     req.LoadingTimeFrom,
		LoadingTimeTo:       req.LoadingTimeTo,
		UnloadingOffsetDays: req.UnloadingOffsetDays,

		InternalNotes: req.InternalNotes,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.templates.Create(ctx, tpl); err != nil {
		zapLog.Error("failed to create recurring template", zap.Error(err))
		return nil, errutil.Internal("failed to create recurring template", err)
	}

	s.audit.Record(ctx, req.TenantID, req.ActorID, audit.ActionTemplateCreated, "recurring_template", tpl.TemplateID, map[string]any{
		"code":      tpl.Code,
		"frequency": tpl.Frequency.String(),
	})
	if err := s.events.Publish(ctx, req.TenantID, webhook.EventTemplateCreated, tpl); err != nil {
		zapLog.Warn("failed to publish template created event", zap.Error(err))
	}

	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, tenantID, templateID string) (*RecurringTemplate, error) {
	if strings.TrimSpace(templateID) == "" {
		return nil, errutil.BadRequest("template_id is required", nil)
	}

	tpl, err := s.templates.FindOne(ctx, &RecurringTemplate{TenantID: tenantID, TemplateID: templateID})
	if err != nil {
		zap.L().Error("failed to get recurring template", zap.String("template_id", templateID), zap.Error(err))
		return nil, errutil.Internal("failed to get recurring template", err)
	}
	if tpl == nil {
		return nil, errutil.NotFound("recurring template not found", nil)
	}
	return tpl, nil
}

type ListTemplatesRequest struct {
	TenantID   string
	OnlyActive bool
	Limit      int
}

func (s *Service) ListTemplates(ctx context.Context, req ListTemplatesRequest) ([]*RecurringTemplate, error) {
	query := &RecurringTemplate{TenantID: req.TenantID}
	if req.OnlyActive {
		query.IsActive = true
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	templates, err := s.templates.Find(ctx, query,
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
		option.WithLimit(limit),
	)
	if err != nil {
		zap.L().Error("failed to list recurring templates", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, errutil.Internal("failed to list recurring templates", err)
	}
	return templates, nil
}

type UpdateTemplateRequest struct {
	TenantID   string
	ActorID    string
	TemplateID string
	Name       string

	Frequency  Frequency
	DayOfWeek  *int
	DayOfMonth *int

	StartDate time.Time
	EndDate   *time.Time

	OriginAddress      string
	DestinationAddress string
	CargoDescription   string
	CargoWeightKg      float64
	VehicleType        string
	PriceAmount        int64
	CurrencyCode       string
	ContractorID       string

	LoadingTimeFrom     string
	LoadingTimeTo       string
	UnloadingOffsetDays int

	InternalNotes string
}

// UpdateTemplate replaces the rule, bounds and payload fields. The cursor is
// re-seeded only when the rule or start date actually changed, so an edit of
// payload fields never moves the schedule.
func (s *Service) UpdateTemplate(ctx context.Context, req UpdateTemplateRequest) (*RecurringTemplate, error) {
	tpl, err := s.GetTemplate(ctx, req.TenantID, req.TemplateID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, errutil.BadRequest("name is required", nil)
	}
	if req.StartDate.IsZero() {
		return nil, errutil.BadRequest("start_date is required", nil)
	}

	rule := Rule{Frequency: req.Frequency, DayOfWeek: req.DayOfWeek, DayOfMonth: req.DayOfMonth}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, errutil.ValidationFailed("end_date must not be before start_date", nil)
	}

	now := s.now()
	scheduleChanged := tpl.Frequency != req.Frequency ||
		!intPtrEqual(tpl.DayOfWeek, req.DayOfWeek) ||
		!intPtrEqual(tpl.DayOfMonth, req.DayOfMonth) ||
		!tpl.StartDate.Equal(req.StartDate)

	tpl.Name = req.Name
	tpl.Frequency = req.Frequency
	tpl.DayOfWeek = req.DayOfWeek
	tpl.DayOfMonth = req.DayOfMonth
	tpl.StartDate = req.StartDate
	tpl.EndDate = req.EndDate
	tpl.OriginAddress = req.OriginAddress
	tpl.DestinationAddress = req.DestinationAddress
	tpl.CargoDescription = req.CargoDescription
	tpl.CargoWeightKg = req.CargoWeightKg
	tpl.VehicleType = req.VehicleType
	tpl.PriceAmount = req.PriceAmount
	tpl.CurrencyCode = req.CurrencyCode
	tpl.ContractorID = req.ContractorID
	tpl.LoadingTimeFrom = req.LoadingTimeFrom
	tpl.LoadingTimeTo = req.LoadingTimeTo
	tpl.UnloadingOffsetDays = req.UnloadingOffsetDays
	tpl.InternalNotes = req.InternalNotes
	tpl.UpdatedAt = now

	// Updates with a map so cleared anchors and a removed end date persist
	// as NULL; a struct update would skip zero-valued fields.
	updates := map[string]any{
		"name":                  tpl.Name,
		"frequency":             tpl.Frequency,
		"day_of_week":           tpl.DayOfWeek,
		"day_of_month":          tpl.DayOfMonth,
		"start_date":            tpl.StartDate,
		"end_date":              tpl.EndDate,
		"origin_address":        tpl.OriginAddress,
		"destination_address":   tpl.DestinationAddress,
		"cargo_description":     tpl.CargoDescription,
		"cargo_weight_kg":       tpl.CargoWeightKg,
		"vehicle_type":          tpl.VehicleType,
		"price_amount":          tpl.PriceAmount,
		"currency_code":         tpl.CurrencyCode,
		"contractor_id":         tpl.ContractorID,
		"loading_time_from":     tpl.LoadingTimeFrom,
		"loading_time_to":       tpl.LoadingTimeTo,
		"unloading_offset_days": tpl.UnloadingOffsetDays,
		"internal_notes":        tpl.InternalNotes,
		"updated_at":            tpl.UpdatedAt,
	}

	// The cursor belongs to Generate. It is written here only when the
	// schedule itself changed; a payload edit must never touch it, or a
	// generation committing between this call's read and its update would
	// be rewound and its occurrence re-emitted on the next sweep.
	if scheduleChanged {
		tpl.NextGenerationDate = rule.NextAfter(req.StartDate, now)
		updates["next_generation_date"] = tpl.NextGenerationDate
	}

	if err := s.templates.Update(ctx, tpl.TemplateID, updates); err != nil {
		zap.L().Error("failed to update recurring template", zap.String("template_id", tpl.TemplateID), zap.Error(err))
		return nil, errutil.Internal("failed to update recurring template", err)
	}

	s.audit.Record(ctx, req.TenantID, req.ActorID, audit.ActionTemplateUpdated, "recurring_template", tpl.TemplateID, map[string]any{
		"schedule_changed": scheduleChanged,
	})
	if err := s.events.Publish(ctx, req.TenantID, webhook.EventTemplateUpdated, tpl); err != nil {
		zap.L().Warn("failed to publish template updated event", zap.Error(err))
	}

	return tpl, nil
}

// DeactivateTemplate is the retirement path. Templates are never physically
// deleted while generated orders reference them.
func (s *Service) DeactivateTemplate(ctx context.Context, tenantID, actorID, templateID string) error {
	tpl, err := s.GetTemplate(ctx, tenantID, templateID)
	if err != nil {
		return err
	}

	if err := s.templates.Update(ctx, tpl.TemplateID, map[string]any{
		"is_active":  false,
		"updated_at": s.now(),
	}); err != nil {
		zap.L().Error("failed to deactivate recurring template", zap.String("template_id", templateID), zap.Error(err))
		return errutil.Internal("failed to deactivate recurring template", err)
	}

	s.audit.Record(ctx, tenantID, actorID, audit.ActionTemplateUpdated, "recurring_template", templateID, map[string]any{
		"is_active": false,
	})
	return nil
}

// orderCreatedEvent is the webhook payload for a generated order.
type orderCreatedEvent struct {
	Order        *order.Order `json:"order"`
	TemplateID   string       `json:"template_id"`
	TemplateName string       `json:"template_name"`
}

// Generate mints one concrete order from the template's current cursor and
// advances the cursor by a single step. The order insert and the cursor
// advance commit together or not at all; the advance is a conditional update
// keyed on the counter read before the transaction, so two concurrent calls
// can never mint the same order number.
func (s *Service) Generate(ctx context.Context, tenantID, templateID string, ov Overrides) (*order.Order, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("tenant_id", tenantID),
		zap.String("template_id", templateID),
	)

	tpl, err := s.templates.FindOne(ctx, &RecurringTemplate{TenantID: tenantID, TemplateID: templateID})
	if err != nil {
		zapLog.Error("failed to load recurring template", zap.Error(err))
		return nil, errutil.Internal("failed to load recurring template", err)
	}
	if tpl == nil {
		return nil, errutil.NotFound("recurring template not found", nil)
	}

	now := s.now()
	if !tpl.IsActive {
		return nil, errutil.UnprocessableEntity("recurring template is inactive", nil)
	}
	if tpl.EndDate != nil && tpl.EndDate.Before(now) {
		return nil, errutil.UnprocessableEntity("recurring template has expired", nil)
	}

	reference := tpl.NextGenerationDate
	expectedCount := tpl.GeneratedOrdersCount

	newOrder := Materialize(tpl, reference, ov)
	newOrder.OrderID = s.node.Generate().String()
	newOrder.OrderNumber = orderNumber(tpl.TemplateID, expectedCount+1)
	newOrder.CreatedAt = now
	newOrder.UpdatedAt = now

	next := tpl.Rule().Next(reference)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orders.WithTrx(tx).Create(ctx, &newOrder); err != nil {
			return errutil.Internal("failed to persist generated order", err)
		}

		res := tx.Model(&RecurringTemplate{}).
			Where("template_id = ? AND generated_orders_count = ?", tpl.TemplateID, expectedCount).
			Updates(map[string]any{
				"generated_orders_count": expectedCount + 1,
				"last_generated_at":      now,
				"next_generation_date":   next,
				"updated_at":             now,
			})
		if res.Error != nil {
			return errutil.Internal("failed to advance recurring template", res.Error)
		}
		if res.RowsAffected == 0 {
			return errutil.Conflict("recurring template was advanced concurrently", nil)
		}
		return nil
	})
	if err != nil {
		zapLog.Warn("generation aborted", zap.Error(err))
		return nil, err
	}

	zapLog.Info("order generated",
		zap.String("order_id", newOrder.OrderID),
		zap.String("order_number", newOrder.OrderNumber),
		zap.Time("next_generation_date", next),
	)

	s.audit.Record(ctx, tenantID, "", audit.ActionOrderCreated, "order", newOrder.OrderID, map[string]any{
		"order_number": newOrder.OrderNumber,
		"template_id":  tpl.TemplateID,
	})
	s.audit.Record(ctx, tenantID, "", audit.ActionTemplateAdvanced, "recurring_template", tpl.TemplateID, map[string]any{
		"generated_orders_count": expectedCount + 1,
		"next_generation_date":   next,
	})
	if err := s.events.Publish(ctx, tenantID, webhook.EventOrderCreated, orderCreatedEvent{
		Order:        &newOrder,
		TemplateID:   tpl.TemplateID,
		TemplateName: tpl.Name,
	}); err != nil {
		zapLog.Warn("failed to publish order created event", zap.Error(err))
	}

	return &newOrder, nil
}

// orderNumber derives the human-traceable number of a generated order from
// the template identity and the post-increment counter.
func orderNumber(templateID string, counter int) string {
	suffix := templateID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("REC-%s-%04d", suffix, counter)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
