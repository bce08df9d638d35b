// pkg/cleaner/derive.go
package cleaner

import (
	"maps"
	"regexp"

	"github.com/David-Botos/food-inspections/pkg/model"
)

var (
	// First parenthesized group, without the parentheses
	seatNumbersPattern = regexp.MustCompile(`\(([^)]+)\)`)
	// Any bracketed or parenthesized run, shortest match
	bracketedPattern = regexp.MustCompile(`[\(\[].*?[\)\]]`)
)

// ExtractSeatNumbers splits a description into its seat-number annotation and the remaining text.
// ok is false when the description carries no parenthesized content.
func ExtractSeatNumbers(description string) (seats string, rewritten string, ok bool) {
	match := seatNumbersPattern.FindStringSubmatch(description)
	rewritten = bracketedPattern.ReplaceAllString(description, "")
	if match == nil {
		return "", rewritten, false
	}
	return match[1], rewritten, true
}

// DeriveSeatNumbers adds the SEAT NUMBERS column parsed out of column and strips
// every bracketed substring from column itself. Non-string cells pass through with no seat numbers.
func DeriveSeatNumbers(t *model.Table, column string) (*model.Table, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}

	rows := make([]model.Row, len(t.Rows))
	for i, row := range t.Rows {
		r := maps.Clone(row)
		if r == nil {
			r = model.Row{}
		}
		r[model.ColSeatNumbers] = nil

		if text, isString := row[column].(string); isString {
			seats, rewritten, ok := ExtractSeatNumbers(text)
			r[column] = rewritten
			if ok {
				r[model.ColSeatNumbers] = seats
			}
		}
		rows[i] = r
	}

	out := t.WithRows(rows)
	out.AddColumn(model.ColSeatNumbers)
	return out, nil
}
