package aggregate

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/food-inspections/pkg/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func cleanedInspections(rows ...model.Row) *model.Table {
	return model.NewTable("inspections",
		[]string{model.ColZipCode, model.ColDescription, model.ColScore, model.ColActivityDate, model.ColSeatNumbers},
		rows...,
	).WithState(model.StateCleaned)
}

func scoreRow(zip, desc string, score interface{}, date interface{}) model.Row {
	return model.Row{
		model.ColZipCode:      zip,
		model.ColDescription:  desc,
		model.ColScore:        score,
		model.ColActivityDate: date,
		model.ColSeatNumbers:  "0-30",
	}
}

func zipFixture() *model.Table {
	return cleanedInspections(
		scoreRow("90001", "RESTAURANT ", "92", day(2019, 3, 1)),
		scoreRow("90001", "RESTAURANT ", "92", day(2019, 7, 1)),
		scoreRow("90001", "MARKET ", "85", day(2019, 12, 31)),
		scoreRow("90001", "MARKET ", "95", day(2020, 1, 1)),
		scoreRow("90002", "MARKET ", "70", day(2020, 4, 2)),
		scoreRow("90002", "RESTAURANT ", "81", day(2020, 5, 2)),
		scoreRow("100", "RESTAURANT ", 88.0, day(2021, 5, 2)),
	)
}

func TestAggregateMeanAndMedian(t *testing.T) {
	in := cleanedInspections(
		scoreRow("90001", "G", "80", day(2020, 1, 5)),
		scoreRow("90002", "G", "90", day(2020, 11, 5)),
	)

	rows, err := Aggregate(BySeating, in)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "G", rows[0].Group)
	assert.Equal(t, 2020, rows[0].Year)
	assert.Equal(t, 85.0, rows[0].Mean)
	assert.Equal(t, 85.0, rows[0].Median)
	assert.Equal(t, 80.0, rows[0].Mode)
	assert.Equal(t, []float64{80, 90}, rows[0].Modes)
	assert.Equal(t, 2, rows[0].Count)
}

func TestAggregateModeTieIsStable(t *testing.T) {
	in := cleanedInspections(
		scoreRow("90001", "G", "90", day(2020, 1, 5)),
		scoreRow("90001", "G", "80", day(2020, 2, 5)),
		scoreRow("90001", "G", "95", day(2020, 3, 5)),
		scoreRow("90001", "G", "70", day(2020, 4, 5)),
	)

	for i := 0; i < 200; i++ {
		rows, err := Aggregate(BySeating, in)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, 70.0, rows[0].Mode, "iteration %d", i)
		require.Equal(t, []float64{70, 80, 90, 95}, rows[0].Modes)
	}
}

func TestAggregateByZipCodeGolden(t *testing.T) {
	rows, err := Aggregate(ByZipCode, zipFixture())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, ByZipCode, rows))

	g := goldie.New(t)
	g.Assert(t, "aggregate_by_zip", buf.Bytes())
}

func TestAggregateSplitsCalendarYears(t *testing.T) {
	rows, err := Aggregate(BySeating, zipFixture())
	require.NoError(t, err)

	var keys []string
	for _, r := range rows {
		keys = append(keys, fmt.Sprintf("%s/%d", r.Group, r.Year))
	}
	assert.Equal(t, []string{"MARKET /2019", "MARKET /2020", "RESTAURANT /2019", "RESTAURANT /2020", "RESTAURANT /2021"}, keys)
	assert.Equal(t, 82.5, rows[1].Mean)
	assert.Equal(t, 70.0, rows[1].Mode)
	assert.Equal(t, []float64{70, 95}, rows[1].Modes)
}

func TestAggregateSkipsIncompleteRows(t *testing.T) {
	in := cleanedInspections(
		scoreRow("90001", "G", "80", day(2020, 1, 5)),
		scoreRow("90001", "G", "n/a", day(2020, 1, 6)),
		scoreRow("90001", "G", "70", nil),
		model.Row{model.ColZipCode: nil, model.ColScore: "60", model.ColActivityDate: day(2020, 1, 7)},
	)

	rows, err := Aggregate(ByZipCode, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Count)
}

func TestAggregateEmptyTable(t *testing.T) {
	rows, err := Aggregate(ByZipCode, cleanedInspections())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAggregateBeforeCleaning(t *testing.T) {
	raw := model.NewTable("inspections",
		[]string{model.ColZipCode, model.ColDescription, model.ColScore, model.ColActivityDate})

	_, err := Aggregate(ByZipCode, raw)

	var shape *model.InvalidShapeError
	require.True(t, errors.As(err, &shape))
}

func TestAggregateUnknownGrouping(t *testing.T) {
	_, err := Aggregate(Grouping(42), zipFixture())
	assert.ErrorIs(t, err, ErrUnknownGrouping)

	_, err = ParseGrouping("county")
	assert.ErrorIs(t, err, ErrUnknownGrouping)

	g, err := ParseGrouping("zip")
	require.NoError(t, err)
	assert.Equal(t, ByZipCode, g)
}

func TestMedianAndModes(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, []float64{1, 4}, Modes([]float64{4, 1, 4, 1, 2}))
}

func TestTopViolationCodes(t *testing.T) {
	violations := model.NewTable("violations", []string{model.ColViolationCode},
		model.Row{model.ColViolationCode: "F023"},
		model.Row{model.ColViolationCode: "F023"},
		model.Row{model.ColViolationCode: "F023"},
		model.Row{model.ColViolationCode: "F044"},
		model.Row{model.ColViolationCode: "F044"},
		model.Row{model.ColViolationCode: "F007"},
		model.Row{model.ColViolationCode: "F001"},
	)

	top, err := TopViolationCodes(violations, 3)
	require.NoError(t, err)
	assert.Equal(t, []CodeCount{
		{Code: "F001", Count: 1},
		{Code: "F044", Count: 2},
		{Code: "F023", Count: 3},
	}, top)

	all, err := TopViolationCodes(violations, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteViolationCodes(&buf, top[2:]))
	assert.Equal(t, "F023          3\n", buf.String())
}

func TestViolationsByZip(t *testing.T) {
	violations := model.NewTable("violations", []string{model.ColZipCode},
		model.Row{model.ColZipCode: "90002"},
		model.Row{model.ColZipCode: "90001"},
		model.Row{model.ColZipCode: "90002"},
	)

	counts, err := ViolationsByZip(violations)
	require.NoError(t, err)
	assert.Equal(t, []ZipCount{{ZipCode: "90001", Count: 1}, {ZipCode: "90002", Count: 2}}, counts)

	_, err = ViolationsByZip(model.NewTable("violations", nil))
	assert.Error(t, err)
}
