package aggregate

import (
	"fmt"
	"io"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// WriteReport renders aggregate rows as a fixed-width text table headed by the grouping column
func WriteReport(w io.Writer, choice Grouping, rows []model.AggregateRow) error {
	header := choice.Column()
	width := len(header)
	for _, r := range rows {
		if len(r.Group) > width {
			width = len(r.Group)
		}
	}

	if _, err := fmt.Fprintf(w, "%-*s  %4s  %8s  %8s  %8s  %5s\n",
		width, header, "YEAR", "MEAN", "MEDIAN", "MODE", "COUNT"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-*s  %4d  %8.2f  %8.2f  %8.2f  %5d\n",
			width, r.Group, r.Year, r.Mean, r.Median, r.Mode, r.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteViolationCodes renders code counts one per line, least cited first
func WriteViolationCodes(w io.Writer, counts []CodeCount) error {
	for _, c := range counts {
		if _, err := fmt.Fprintf(w, "%-8s %6d\n", c.Code, c.Count); err != nil {
			return err
		}
	}
	return nil
}
