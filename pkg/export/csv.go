// pkg/export/csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/model"
)

// aggregateHeader is the column row shared by the CSV and XLSX aggregate outputs
func aggregateHeader(choice aggregate.Grouping) []string {
	return []string{choice.Column(), "YEAR", "MEAN", "MEDIAN", "MODE", "COUNT"}
}

// WriteAggregatesCSV writes aggregate rows with a header named after the grouping column
func WriteAggregatesCSV(w io.Writer, choice aggregate.Grouping, rows []model.AggregateRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(aggregateHeader(choice)); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Group,
			strconv.Itoa(r.Year),
			formatFloat(r.Mean),
			formatFloat(r.Median),
			formatFloat(r.Mode),
			strconv.Itoa(r.Count),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableCSV writes a table with its columns as the header row; nil cells are left empty
func WriteTableCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = FormatCell(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCell renders a cell for text output. Dates print without a time of day.
func FormatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02")
	case float64:
		return formatFloat(val)
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
