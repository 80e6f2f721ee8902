package order

import (
	"time"
)

type Status string

var (
	StatusCreated   Status = "created"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	switch s {
	case StatusCreated, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return string(s)
	default:
		return ""
	}
}

// Order is a concrete transport order. Orders minted from a recurring
// template carry SourceTemplateID as an informational back-reference only;
// their lifecycle is fully independent of the template afterwards.
type Order struct {
	OrderID     string `gorm:"column:order_id;primaryKey"`
	TenantID    string `gorm:"column:tenant_id;index:idx_orders_tenant_number,unique"`
	OrderNumber string `gorm:"column:order_number;index:idx_orders_tenant_number,unique"`

	SourceTemplateID *string `gorm:"column:source_template_id;index"`

	Status Status `gorm:"column:status"`

	OriginAddress      string `gorm:"column:origin_address"`
	DestinationAddress string `gorm:"column:destination_address"`
	CargoDescription   string `gorm:"column:cargo_description"`
	CargoWeightKg      float64
	VehicleType        string `gorm:"column:vehicle_type"`

	PriceAmount  int64  `gorm:"column:price_amount"`
	CurrencyCode string `gorm:"column:currency_code"`
	ContractorID string `gorm:"column:contractor_id"`

	LoadingDate     time.Time `gorm:"column:loading_date"`
	UnloadingDate   time.Time `gorm:"column:unloading_date"`
	LoadingTimeFrom string    `gorm:"column:loading_time_from"`
	LoadingTimeTo   string    `gorm:"column:loading_time_to"`

	InternalNotes string `gorm:"column:internal_notes"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Order) TableName() string { return "orders" }
