package cleaner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/food-inspections/pkg/model"
)

func statusTable() *model.Table {
	return model.NewTable("inspections",
		[]string{model.ColSerialNumber, model.ColFacilityID, model.ColProgramStatus},
		model.Row{model.ColSerialNumber: "S1", model.ColFacilityID: "FA1", model.ColProgramStatus: "ACTIVE"},
		model.Row{model.ColSerialNumber: "S2", model.ColFacilityID: "FA2", model.ColProgramStatus: "CLOSED"},
		model.Row{model.ColSerialNumber: "S3", model.ColFacilityID: "FA3", model.ColProgramStatus: "ACTIVE"},
	)
}

func TestInactiveList(t *testing.T) {
	inactive, err := InactiveList(statusTable())
	require.NoError(t, err)

	require.Equal(t, 1, inactive.Len())
	assert.Equal(t, "CLOSED", inactive.Rows[0][model.ColProgramStatus])
	assert.Equal(t, "S2", inactive.Rows[0][model.ColSerialNumber])
}

func TestRemoveInactivePreservesOrder(t *testing.T) {
	active, err := RemoveInactive(statusTable())
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"S1", "S3"}, serials(active))
}

func TestStatusMatchIsCaseSensitive(t *testing.T) {
	in := model.NewTable("inspections",
		[]string{model.ColSerialNumber, model.ColFacilityID, model.ColProgramStatus},
		model.Row{model.ColSerialNumber: "S1", model.ColFacilityID: "FA1", model.ColProgramStatus: "active"},
		model.Row{model.ColSerialNumber: "S2", model.ColFacilityID: "FA2", model.ColProgramStatus: nil},
	)

	inactive, err := InactiveList(in)
	require.NoError(t, err)
	assert.Equal(t, 2, inactive.Len())
}

func TestInactiveMissingStatusColumn(t *testing.T) {
	in := model.NewTable("inspections", []string{model.ColSerialNumber})

	_, err := InactiveList(in)
	var missing *model.MissingColumnError
	assert.True(t, errors.As(err, &missing))

	_, err = RemoveInactive(in)
	assert.True(t, errors.As(err, &missing))
}

func TestExclusionKeysDeduplicateFacilitiesOnly(t *testing.T) {
	inactive := model.NewTable("inspections",
		[]string{model.ColSerialNumber, model.ColFacilityID, model.ColProgramStatus},
		model.Row{model.ColSerialNumber: "S2", model.ColFacilityID: "FA2", model.ColProgramStatus: "INACTIVE"},
		model.Row{model.ColSerialNumber: "S4", model.ColFacilityID: "FA2", model.ColProgramStatus: "INACTIVE"},
		model.Row{model.ColSerialNumber: "S4", model.ColFacilityID: "FA9", model.ColProgramStatus: "CLOSED"},
	)

	keys, err := ExclusionKeysFrom(inactive)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"FA2", "FA9"}, keys.FacilityIDs)
	assert.Equal(t, []interface{}{"S2", "S4", "S4"}, keys.SerialNumbers)
}
