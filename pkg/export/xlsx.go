// pkg/export/xlsx.go
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/model"
)

// maxSheetName is the longest sheet name Excel accepts
const maxSheetName = 31

// Sheet is one worksheet: a header row followed by value rows
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// AggregateSheet lays out aggregate rows under the grouping's header
func AggregateSheet(name string, choice aggregate.Grouping, rows []model.AggregateRow) Sheet {
	s := Sheet{Name: name, Header: aggregateHeader(choice)}
	for _, r := range rows {
		s.Rows = append(s.Rows, []interface{}{r.Group, r.Year, r.Mean, r.Median, r.Mode, r.Count})
	}
	return s
}

// ViolationCodeSheet lays out violation code counts
func ViolationCodeSheet(name string, counts []aggregate.CodeCount) Sheet {
	s := Sheet{Name: name, Header: []string{model.ColViolationCode, "COUNT"}}
	for _, c := range counts {
		s.Rows = append(s.Rows, []interface{}{c.Code, c.Count})
	}
	return s
}

// ZipCountSheet lays out violation counts per zip code
func ZipCountSheet(name string, counts []aggregate.ZipCount) Sheet {
	s := Sheet{Name: name, Header: []string{model.ColZipCode, "COUNT"}}
	for _, c := range counts {
		s.Rows = append(s.Rows, []interface{}{c.ZipCode, c.Count})
	}
	return s
}

// TableSheet lays out a whole table; dates are written as ISO dates
func TableSheet(t *model.Table) Sheet {
	s := Sheet{Name: t.Name, Header: t.Columns}
	for _, row := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			if ts, ok := row[col].(time.Time); ok {
				values[i] = ts.Format("2006-01-02")
				continue
			}
			values[i] = row[col]
		}
		s.Rows = append(s.Rows, values)
	}
	return s
}

// WriteWorkbook saves the sheets, in order, as an XLSX workbook at path
func WriteWorkbook(path string, sheets ...Sheet) (err error) {
	if len(sheets) == 0 {
		return errors.New("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if len(s.Name) > maxSheetName {
			return fmt.Errorf("sheet name %q is longer than %d characters", s.Name, maxSheetName)
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", s.Name, err)
		}

		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", s.Name, err)
	}
	if err := f.SetRowStyle(s.Name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", s.Name, err)
	}

	for i, values := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, s.Name, err)
		}
	}
	return nil
}
