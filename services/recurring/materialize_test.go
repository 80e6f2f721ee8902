package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"transportplane/services/order"
)

func testTemplate() *RecurringTemplate {
	return &RecurringTemplate{
		TemplateID: "tpl-123456",
		TenantID:   "tenant-1",
		Code:       "TPL-240101-001AB",
		Name:       "Warsaw weekly run",

		OriginAddress:      "Warsaw, PL",
		DestinationAddress: "Berlin, DE",
		CargoDescription:   "Palletized electronics",
		CargoWeightKg:      1200,
		VehicleType:        "curtainsider",
		PriceAmount:        85000,
		CurrencyCode:       "EUR",
		ContractorID:       "contractor-9",

		LoadingTimeFrom: "08:00",
		LoadingTimeTo:   "12:00",
	}
}

func TestMaterializeDefaults(t *testing.T) {
	tpl := testTemplate()
	ref := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	draft := Materialize(tpl, ref, Overrides{})

	require.Equal(t, tpl.TenantID, draft.TenantID)
	require.NotNil(t, draft.SourceTemplateID)
	require.Equal(t, tpl.TemplateID, *draft.SourceTemplateID)
	require.Equal(t, order.StatusCreated, draft.Status)

	require.True(t, draft.LoadingDate.Equal(ref))
	require.True(t, draft.UnloadingDate.Equal(ref))

	require.Equal(t, tpl.OriginAddress, draft.OriginAddress)
	require.Equal(t, tpl.DestinationAddress, draft.DestinationAddress)
	require.Equal(t, tpl.CargoDescription, draft.CargoDescription)
	require.Equal(t, tpl.CargoWeightKg, draft.CargoWeightKg)
	require.Equal(t, tpl.VehicleType, draft.VehicleType)
	require.Equal(t, tpl.PriceAmount, draft.PriceAmount)
	require.Equal(t, tpl.CurrencyCode, draft.CurrencyCode)
	require.Equal(t, tpl.ContractorID, draft.ContractorID)
	require.Equal(t, tpl.LoadingTimeFrom, draft.LoadingTimeFrom)
	require.Equal(t, tpl.LoadingTimeTo, draft.LoadingTimeTo)
}

func TestMaterializeUnloadingOffset(t *testing.T) {
	tpl := testTemplate()
	tpl.UnloadingOffsetDays = 2
	ref := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	draft := Materialize(tpl, ref, Overrides{})
	require.True(t, draft.UnloadingDate.Equal(ref.AddDate(0, 0, 2)))
}

func TestMaterializeOverrides(t *testing.T) {
	tpl := testTemplate()
	ref := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	loading := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	unloading := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)

	draft := Materialize(tpl, ref, Overrides{LoadingDate: &loading, UnloadingDate: &unloading})
	require.True(t, draft.LoadingDate.Equal(loading))
	require.True(t, draft.UnloadingDate.Equal(unloading))
}

func TestMaterializeProvenanceNotes(t *testing.T) {
	tpl := testTemplate()
	ref := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	draft := Materialize(tpl, ref, Overrides{})
	require.Contains(t, draft.InternalNotes, tpl.Name)
	require.Contains(t, draft.InternalNotes, tpl.Code)

	// User-entered notes survive; provenance is appended, not a replacement.
	tpl.InternalNotes = "call the gatehouse before arrival"
	draft = Materialize(tpl, ref, Overrides{})
	require.Contains(t, draft.InternalNotes, "call the gatehouse before arrival")
	require.Contains(t, draft.InternalNotes, tpl.Name)
}
