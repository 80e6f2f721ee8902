package recurring

import (
	"time"
)

// RecurringTemplate holds a cadence rule, an order payload snapshot and the
// generation cursor. The cursor fields are advanced only by Generate, inside
// the same transaction that inserts the materialized order.
type RecurringTemplate struct {
	TemplateID string `gorm:"column:template_id;primaryKey"`
	TenantID   string `gorm:"column:tenant_id;index:idx_templates_tenant_code,unique"`
	Code       string `gorm:"column:code;index:idx_templates_tenant_code,unique"`
	Name       string `gorm:"column:name"`

	Frequency  Frequency `gorm:"column:frequency"`
	DayOfWeek  *int      `gorm:"column:day_of_week"`
	DayOfMonth *int      `gorm:"column:day_of_month"`

	StartDate time.Time  `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
	IsActive  bool       `gorm:"column:is_active"`

	NextGenerationDate   time.Time  `gorm:"column:next_generation_date;index"`
	LastGeneratedAt      *time.Time `gorm:"column:last_generated_at"`
	GeneratedOrdersCount int        `gorm:"column:generated_orders_count"`

	OriginAddress      string  `gorm:"column:origin_address"`
	DestinationAddress string  `gorm:"column:destination_address"`
	CargoDescription   string  `gorm:"column:cargo_description"`
	CargoWeightKg      float64 `gorm:"column:cargo_weight_kg"`
	VehicleType        string  `gorm:"column:vehicle_type"`

	PriceAmount  int64  `gorm:"column:price_amount"`
	CurrencyCode string `gorm:"column:currency_code"`
	ContractorID string `gorm:"column:contractor_id"`

	LoadingTimeFrom     string `gorm:"column:loading_time_from"`
	LoadingTimeTo       string `gorm:"column:loading_time_to"`
	UnloadingOffsetDays int    `gorm:"column:unloading_offset_days"`

	InternalNotes string `gorm:"column:internal_notes"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (RecurringTemplate) TableName() string { return "recurring_templates" }

func (t *RecurringTemplate) Rule() Rule {
	return Rule{
		Frequency:  t.Frequency,
		DayOfWeek:  t.DayOfWeek,
		DayOfMonth: t.DayOfMonth,
	}
}
