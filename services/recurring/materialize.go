package recurring

import (
	"fmt"
	"strings"
	"time"

	"transportplane/services/order"
)

// Overrides are caller-supplied replacements for the dates a generated
// order would otherwise take from the schedule.
type Overrides struct {
	LoadingDate   *time.Time
	UnloadingDate *time.Time
}

// Materialize builds the field set of a concrete order from the template
// snapshot and the occurrence date being generated for. Pure; the caller
// assigns identity (order id, order number) and persists.
func Materialize(tpl *RecurringTemplate, referenceDate time.Time, ov Overrides) order.Order {
	loading := referenceDate
	if ov.LoadingDate != nil {
		loading = *ov.LoadingDate
	}

	unloading := loading.AddDate(0, 0, tpl.UnloadingOffsetDays)
	if ov.UnloadingDate != nil {
		unloading = *ov.UnloadingDate
	}

	templateID := tpl.TemplateID

	return order.Order{
		TenantID:         tpl.TenantID,
		SourceTemplateID: &templateID,
		Status:           order.StatusCreated,

		OriginAddress:      tpl.OriginAddress,
		DestinationAddress: tpl.DestinationAddress,
		CargoDescription:   tpl.CargoDescription,
		CargoWeightKg:      tpl.CargoWeightKg,
		VehicleType:        tpl.VehicleType,

		PriceAmount:  tpl.PriceAmount,
		CurrencyCode: tpl.CurrencyCode,
		ContractorID: tpl.ContractorID,

		LoadingDate:     loading,
		UnloadingDate:   unloading,
		LoadingTimeFrom: tpl.LoadingTimeFrom,
		LoadingTimeTo:   tpl.LoadingTimeTo,

		InternalNotes: provenanceNotes(tpl),
	}
}

// provenanceNotes appends the generation note to whatever the user typed on
// the template. User-entered notes are never replaced.
func provenanceNotes(tpl *RecurringTemplate) string {
	note := fmt.Sprintf("Generated from recurring template %q (%s).", tpl.Name, tpl.Code)
	if strings.TrimSpace(tpl.InternalNotes) == "" {
		return note
	}
	return tpl.InternalNotes + "\n" + note
}
