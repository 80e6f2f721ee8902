package httpapi

import (
	"net/http"
	"strconv"

	"transportplane/pkg/errutil"
	"transportplane/pkg/middleware"
	"transportplane/services/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type OrderHandler struct {
	svc *order.Service
}

type OrderHandlerParams struct {
	fx.In
	Service *order.Service
}

func NewOrderHandler(p OrderHandlerParams) *OrderHandler {
	return &OrderHandler{svc: p.Service}
}

type orderRequest struct {
	OriginAddress      string  `json:"origin_address"`
	DestinationAddress string  `json:"destination_address"`
	CargoDescription   string  `json:"cargo_description"`
	CargoWeightKg      float64 `json:"cargo_weight_kg"`
	VehicleType        string  `json:"vehicle_type"`
	PriceAmount        int64   `json:"price_amount"`
	CurrencyCode       string  `json:"currency_code"`
	ContractorID       string  `json:"contractor_id"`

	LoadingDate     string  `json:"loading_date"`
	UnloadingDate   *string `json:"unloading_date"`
	LoadingTimeFrom string  `json:"loading_time_from"`
	LoadingTimeTo   string  `json:"loading_time_to"`

	InternalNotes string `json:"internal_notes"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	loading, err := parseDate(req.LoadingDate)
	if err != nil {
		c.Error(err)
		return
	}
	unloading, err := parseOptionalDate(req.UnloadingDate)
	if err != nil {
		c.Error(err)
		return
	}

	createReq := order.CreateRequest{
		TenantID:           middleware.TenantFromContext(c.Request.Context()),
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		CargoDescription:   req.CargoDescription,
		CargoWeightKg:      req.CargoWeightKg,
		VehicleType:        req.VehicleType,
		PriceAmount:        req.PriceAmount,
		CurrencyCode:       req.CurrencyCode,
		ContractorID:       req.ContractorID,
		LoadingDate:        loading,
		LoadingTimeFrom:    req.LoadingTimeFrom,
		LoadingTimeTo:      req.LoadingTimeTo,
		InternalNotes:      req.InternalNotes,
	}
	if unloading != nil {
		createReq.UnloadingDate = *unloading
	}

	created, err := h.svc.CreateOrder(c.Request.Context(), createReq)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.svc.ListOrders(ctx, order.ListRequest{
		TenantID:   middleware.TenantFromContext(ctx),
		TemplateID: c.Query("template_id"),
		Status:     order.Status(c.Query("status")),
		Limit:      limit,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	got, err := h.svc.GetOrder(ctx, middleware.TenantFromContext(ctx), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, got)
}
