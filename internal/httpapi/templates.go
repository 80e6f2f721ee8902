package httpapi

import (
	"net/http"

	"transportplane/pkg/errutil"
	"transportplane/pkg/middleware"
	"transportplane/services/recurring"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type TemplateHandler struct {
	svc *recurring.Service
}

type TemplateHandlerParams struct {
	fx.In
	Service *recurring.Service
}

func NewTemplateHandler(p TemplateHandlerParams) *TemplateHandler {
	return &TemplateHandler{svc: p.Service}
}

type templateRequest struct {
	Name       string  `json:"name"`
	Frequency  string  `json:"frequency"`
	DayOfWeek  *int    `json:"day_of_week"`
	DayOfMonth *int    `json:"day_of_month"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`

	OriginAddress      string  `json:"origin_address"`
	DestinationAddress string  `json:"destination_address"`
	CargoDescription   string  `json:"cargo_description"`
	CargoWeightKg      float64 `json:"cargo_weight_kg"`
	VehicleType        string  `json:"vehicle_type"`
	PriceAmount        int64   `json:"price_amount"`
	CurrencyCode       string  `json:"currency_code"`
	ContractorID       string  `json:"contractor_id"`

	LoadingTimeFrom     string `json:"loading_time_from"`
	LoadingTimeTo       string `json:"loading_time_to"`
	UnloadingOffsetDays int    `json:"unloading_offset_days"`

	InternalNotes string `json:"internal_notes"`
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.Error(err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	tpl, err := h.svc.CreateTemplate(ctx, recurring.CreateTemplateRequest{
		TenantID:            middleware.TenantFromContext(ctx),
		ActorID:             c.GetHeader(actorHeader),
		Name:                req.Name,
		Frequency:           recurring.Frequency(req.Frequency),
		DayOfWeek:           req.DayOfWeek,
		DayOfMonth:          req.DayOfMonth,
		StartDate:           start,
		EndDate:             end,
		OriginAddress:       req.OriginAddress,
		DestinationAddress:  req.DestinationAddress,
		CargoDescription:    req.CargoDescription,
		CargoWeightKg:       req.CargoWeightKg,
		VehicleType:         req.VehicleType,
		PriceAmount:         req.PriceAmount,
		CurrencyCode:        req.CurrencyCode,
		ContractorID:        req.ContractorID,
		LoadingTimeFrom:     req.LoadingTimeFrom,
		LoadingTimeTo:       req.LoadingTimeTo,
		UnloadingOffsetDays: req.UnloadingOffsetDays,
		InternalNotes:       req.InternalNotes,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *TemplateHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	templates, err := h.svc.ListTemplates(ctx, recurring.ListTemplatesRequest{
		TenantID:   middleware.TenantFromContext(ctx),
		OnlyActive: c.Query("active") == "true",
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	tpl, err := h.svc.GetTemplate(ctx, middleware.TenantFromContext(ctx), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.Error(err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	tpl, err := h.svc.UpdateTemplate(ctx, recurring.UpdateTemplateRequest{
		TenantID:            middleware.TenantFromContext(ctx),
		ActorID:             c.GetHeader(actorHeader),
		TemplateID:          c.Param("id"),
		Name:                req.Name,
		Frequency:           recurring.Frequency(req.Frequency),
		DayOfWeek:           req.DayOfWeek,
		DayOfMonth:          req.DayOfMonth,
		StartDate:           start,
		EndDate:             end,
		OriginAddress:       req.OriginAddress,
		DestinationAddress:  req.DestinationAddress,
		CargoDescription:    req.CargoDescription,
		CargoWeightKg:       req.CargoWeightKg,
		VehicleType:         req.VehicleType,
		PriceAmount:         req.PriceAmount,
		CurrencyCode:        req.CurrencyCode,
		ContractorID:        req.ContractorID,
		LoadingTimeFrom:     req.LoadingTimeFrom,
		LoadingTimeTo:       req.LoadingTimeTo,
		UnloadingOffsetDays: req.UnloadingOffsetDays,
		InternalNotes:       req.InternalNotes,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) Deactivate(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.DeactivateTemplate(ctx, middleware.TenantFromContext(ctx), c.GetHeader(actorHeader), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type generateRequest struct {
	LoadingDate   *string `json:"loading_date"`
	UnloadingDate *string `json:"unloading_date"`
}

func (h *TemplateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
	}

	loading, err := parseOptionalDate(req.LoadingDate)
	if err != nil {
		c.Error(err)
		return
	}
	unloading, err := parseOptionalDate(req.UnloadingDate)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	generated, err := h.svc.Generate(ctx, middleware.TenantFromContext(ctx), c.Param("id"), recurring.Overrides{
		LoadingDate:   loading,
		UnloadingDate: unloading,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, generated)
}
