package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/model"
)

var sampleAggregates = []model.AggregateRow{
	{Group: "90001", Year: 2019, Mean: 89.67, Median: 92, Mode: 92, Count: 3},
	{Group: "90002", Year: 2020, Mean: 75.5, Median: 75.5, Mode: 70, Count: 2},
}

func TestWriteAggregatesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAggregatesCSV(&buf, aggregate.ByZipCode, sampleAggregates))

	assert.Equal(t,
		"Zip Codes,YEAR,MEAN,MEDIAN,MODE,COUNT\n"+
			"90001,2019,89.67,92,92,3\n"+
			"90002,2020,75.5,75.5,70,2\n",
		buf.String())
}

func TestWriteTableCSV(t *testing.T) {
	tbl := model.NewTable("inspections", []string{model.ColSerialNumber, model.ColActivityDate, model.ColSeatNumbers},
		model.Row{model.ColSerialNumber: "S1", model.ColActivityDate: time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC), model.ColSeatNumbers: "0-30"},
		model.Row{model.ColSerialNumber: "S2", model.ColActivityDate: nil},
	)

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, tbl))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"SERIAL NUMBER", "ACTIVITY DATE", "SEAT NUMBERS"},
		{"S1", "2019-05-01", "0-30"},
		{"S2", "", ""},
	}, records)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "92.5", FormatCell(92.5))
	assert.Equal(t, "7", FormatCell(int64(7)))
	assert.Equal(t, "true", FormatCell(true))
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	inventory := model.NewTable("inventory", []string{model.ColFacilityID, model.ColSeatNumbers},
		model.Row{model.ColFacilityID: "FA1", model.ColSeatNumbers: "0-30"},
	)

	err := WriteWorkbook(path,
		AggregateSheet("By zip", aggregate.ByZipCode, sampleAggregates),
		ViolationCodeSheet("Violation codes", []aggregate.CodeCount{{Code: "F023", Count: 3}}),
		ZipCountSheet("Violations by zip", []aggregate.ZipCount{{ZipCode: "90001", Count: 1}}),
		TableSheet(inventory),
	)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"By zip", "Violation codes", "Violations by zip", "inventory"}, f.GetSheetList())

	rows, err := f.GetRows("By zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zip Codes", "YEAR", "MEAN", "MEDIAN", "MODE", "COUNT"}, rows[0])
	assert.Equal(t, []string{"90001", "2019", "89.67", "92", "92", "3"}, rows[1])
	assert.Len(t, rows, 3)

	codes, err := f.GetRows("Violation codes")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"VIOLATION CODE", "COUNT"}, {"F023", "3"}}, codes)

	inv, err := f.GetRows("inventory")
	require.NoError(t, err)
	assert.Equal(t, []string{"FA1", "0-30"}, inv[1])
}

func TestWriteWorkbookRejectsBadSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")

	assert.Error(t, WriteWorkbook(path))
	assert.Error(t, WriteWorkbook(path, Sheet{Name: strings.Repeat("x", 40)}))
}
