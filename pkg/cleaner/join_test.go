package cleaner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/food-inspections/pkg/model"
)

func TestJoinSerialNumbers(t *testing.T) {
	inspections := model.NewTable("inspections", []string{model.ColZipCode, model.ColSerialNumber},
		model.Row{model.ColZipCode: "90001", model.ColSerialNumber: "S1"},
	)
	violations := model.NewTable("violations", []string{model.ColZipCode, model.ColViolationCode},
		model.Row{model.ColZipCode: "90001", model.ColViolationCode: "C1"},
		model.Row{model.ColZipCode: "99999", model.ColViolationCode: "C2"},
	)

	res, err := JoinSerialNumbers(violations, inspections)
	require.NoError(t, err)

	require.Equal(t, 1, res.Table.Len())
	row := res.Table.Rows[0]
	assert.Equal(t, "S1", row[model.ColSerialNumber])
	assert.Equal(t, "C1", row[model.ColViolationCode])
	assert.Equal(t, int64(0), row[model.ColIndex])

	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t, 0, res.FanOut)
	require.Len(t, res.Unjoined, 1)
	assert.Equal(t, int64(1), res.Unjoined[0][model.ColIndex])

	assert.Equal(t,
		[]string{model.ColIndex, model.ColZipCode, model.ColViolationCode, model.ColSerialNumber},
		res.Table.Columns)
	assert.False(t, violations.HasColumn(model.ColIndex))
}

func TestJoinFansOutAcrossSharedZipCodes(t *testing.T) {
	res, err := JoinSerialNumbers(fixtureViolations(), fixtureInspections())
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"S1", "S2", "S3", "S4"}, serials(res.Table))
	assert.Equal(t, []interface{}{int64(0), int64(0), int64(1), int64(3)}, res.Table.Values(model.ColIndex))
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t, 1, res.FanOut)
}

func TestJoinUsesExistingSerialNumber(t *testing.T) {
	inspections := model.NewTable("inspections", []string{model.ColZipCode, model.ColSerialNumber},
		model.Row{model.ColZipCode: "90001", model.ColSerialNumber: "S1"},
		model.Row{model.ColZipCode: "90001", model.ColSerialNumber: "S2"},
	)
	violations := model.NewTable("violations", []string{model.ColSerialNumber, model.ColZipCode},
		model.Row{model.ColSerialNumber: "S2", model.ColZipCode: "90001"},
	)

	res, err := JoinSerialNumbers(violations, inspections)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"S2"}, serials(res.Table))
	assert.Equal(t, 0, res.FanOut)
}

func TestJoinKeepsExistingIndex(t *testing.T) {
	violations := model.NewTable("violations", []string{model.ColIndex, model.ColZipCode},
		model.Row{model.ColIndex: int64(7), model.ColZipCode: "90001"},
	)
	inspections := model.NewTable("inspections", []string{model.ColZipCode, model.ColSerialNumber},
		model.Row{model.ColZipCode: "90001", model.ColSerialNumber: "S1"},
	)

	res, err := JoinSerialNumbers(violations, inspections)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Table.Rows[0][model.ColIndex])
}

func TestJoinMissingZipCode(t *testing.T) {
	violations := model.NewTable("violations", []string{model.ColViolationCode})

	_, err := JoinSerialNumbers(violations, fixtureInspections())

	var missing *model.MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "violations", missing.Table)
}

func TestJoinOnSerialNumberInheritsZipCode(t *testing.T) {
	violations := model.NewTable("violations", []string{model.ColSerialNumber, model.ColViolationCode},
		model.Row{model.ColSerialNumber: "S3", model.ColViolationCode: "F044"},
		model.Row{model.ColSerialNumber: "S9", model.ColViolationCode: "F001"},
	)

	res, err := JoinSerialNumbers(violations, fixtureInspections())
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColSerialNumber}, res.On)
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "90002", res.Table.Rows[0][model.ColZipCode])
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t,
		[]string{model.ColIndex, model.ColSerialNumber, model.ColViolationCode, model.ColZipCode},
		res.Table.Columns)
}
