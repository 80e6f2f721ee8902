package order

import (
	"context"
	"strings"
	"time"

	"transportplane/pkg/db/option"
	"transportplane/pkg/errutil"
	"transportplane/pkg/repository"
	"transportplane/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("order.module",
	fx.Provide(NewService),
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	seq    sequence.Generator
	orders repository.Repository[Order]

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Sequence sequence.Generator
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:     p.DB,
		node:   p.Node,
		seq:    p.Sequence,
		orders: repository.ProvideStore[Order](p.DB),
		now:    time.Now,
	}
}

type CreateRequest struct {
	TenantID string

	OriginAddress      string
	DestinationAddress string
	CargoDescription   string
	CargoWeightKg      float64
	VehicleType        string

	PriceAmount  int64
	CurrencyCode string
	ContractorID string

	LoadingDate     time.Time
	UnloadingDate   time.Time
	LoadingTimeFrom string
	LoadingTimeTo   string

	InternalNotes string
}

// CreateOrder registers a one-off order. Its number comes from the daily
// redis sequence; only template-generated orders use the counter-derived
// REC numbering.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	if strings.TrimSpace(req.OriginAddress) == "" || strings.TrimSpace(req.DestinationAddress) == "" {
		return nil, errutil.BadRequest("origin_address and destination_address are required", nil)
	}
	if req.LoadingDate.IsZero() {
		return nil, errutil.BadRequest("loading_date is required", nil)
	}

	number, err := s.seq.NextOrderCode(ctx, req.TenantID)
	if err != nil {
		zap.L().Error("failed to mint order number", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, errutil.Internal("failed to mint order number", err)
	}

	unloading := req.UnloadingDate
	if unloading.IsZero() {
		unloading = req.LoadingDate
	}

	now := s.now()
	o := &Order{
		OrderID:     s.node.Generate().String(),
		TenantID:    req.TenantID,
		OrderNumber: number,
		Status:      StatusCreated,

		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		CargoDescription:   req.CargoDescription,
		CargoWeightKg:      req.CargoWeightKg,
		VehicleType:        req.VehicleType,

		PriceAmount:  req.PriceAmount,
		CurrencyCode: req.CurrencyCode,
		ContractorID: req.ContractorID,

		LoadingDate:     req.LoadingDate,
		UnloadingDate:   unloading,
		LoadingTimeFrom: req.LoadingTimeFrom,
		LoadingTimeTo:   req.LoadingTimeTo,

		InternalNotes: req.InternalNotes,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		zap.L().Error("failed to create order", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, errutil.Internal("failed to create order", err)
	}

	return o, nil
}

type ListRequest struct {
	TenantID   string
	TemplateID string
	Status     Status
	Limit      int
}

func (s *Service) ListOrders(ctx context.Context, req ListRequest) ([]*Order, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("tenant_id", req.TenantID),
	)

	query := &Order{TenantID: req.TenantID}
	if req.TemplateID != "" {
		query.SourceTemplateID = &req.TemplateID
	}
	if req.Status != "" {
		query.Status = req.Status
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	orders, err := s.orders.Find(ctx, query,
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
		option.WithLimit(limit),
	)
	if err != nil {
		zapLog.Error("failed to list orders", zap.Error(err))
		return nil, errutil.Internal("failed to list orders", err)
	}

	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, tenantID, orderID string) (*Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errutil.BadRequest("order_id is required", nil)
	}

	order, err := s.orders.FindOne(ctx, &Order{TenantID: tenantID, OrderID: orderID})
	if err != nil {
		zap.L().Error("failed to get order", zap.String("order_id", orderID), zap.Error(err))
		return nil, errutil.Internal("failed to get order", err)
	}

	if order == nil {
		return nil, errutil.NotFound("order not found", nil)
	}

	return order, nil
}
