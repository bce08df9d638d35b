// pkg/cleaner/join.go
package cleaner

import (
	"maps"
	"strings"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// JoinResult holds the joined violations and what the join did to them
type JoinResult struct {
	Table     *model.Table
	On        []string // key columns the join matched on
	Matched   int // violations with at least one inspection sharing their join key
	Unmatched int // violations dropped because no inspection shares their join key
	FanOut    int // rows added beyond one per matched violation
	Unjoined  []model.Row
}

// ExposeIndex returns violations with their row position stored in the index column.
// Tables that already carry the column are returned as copies without renumbering.
func ExposeIndex(t *model.Table) *model.Table {
	if t.HasColumn(model.ColIndex) {
		return t.WithRows(t.Rows)
	}

	rows := make([]model.Row, len(t.Rows))
	for i, row := range t.Rows {
		r := maps.Clone(row)
		if r == nil {
			r = model.Row{}
		}
		r[model.ColIndex] = int64(i)
		rows[i] = r
	}

	out := t.WithRows(rows)
	out.Columns = append([]string{model.ColIndex}, out.Columns...)
	return out
}

// JoinSerialNumbers inner-joins violations with the {Zip Codes, SERIAL NUMBER}
// projection of inspections on the key columns the two share. Violations that carry
// only a zip code join on it and may fan out; violations that carry a serial number
// join on it and inherit the inspection's zip code. Unmatched violations are dropped and counted.
func JoinSerialNumbers(violations, inspections *model.Table) (*JoinResult, error) {
	if err := inspections.Require(model.ColZipCode, model.ColSerialNumber); err != nil {
		return nil, err
	}

	var on []string
	for _, col := range []string{model.ColZipCode, model.ColSerialNumber} {
		if violations.HasColumn(col) {
			on = append(on, col)
		}
	}
	if len(on) == 0 {
		return nil, &model.MissingColumnError{Table: violations.Name, Column: model.ColZipCode}
	}

	// Projection of inspections, grouped by join key in inspection order
	projected := make(map[string][]model.Row)
	for _, row := range inspections.Rows {
		k := joinKey(row, on)
		projected[k] = append(projected[k], model.Row{
			model.ColZipCode:      row[model.ColZipCode],
			model.ColSerialNumber: row[model.ColSerialNumber],
		})
	}

	indexed := ExposeIndex(violations)
	result := &JoinResult{On: on}
	rows := make([]model.Row, 0, len(indexed.Rows))
	for _, row := range indexed.Rows {
		matches, ok := projected[joinKey(row, on)]
		if !ok {
			result.Unmatched++
			result.Unjoined = append(result.Unjoined, row)
			continue
		}
		result.Matched++
		result.FanOut += len(matches) - 1
		for _, match := range matches {
			r := maps.Clone(row)
			r[model.ColZipCode] = match[model.ColZipCode]
			r[model.ColSerialNumber] = match[model.ColSerialNumber]
			rows = append(rows, r)
		}
	}

	out := indexed.WithRows(rows)
	out.AddColumn(model.ColZipCode)
	out.AddColumn(model.ColSerialNumber)
	result.Table = out
	return result, nil
}

func joinKey(row model.Row, on []string) string {
	if len(on) == 1 {
		return ValueKey(row[on[0]])
	}
	parts := make([]string, len(on))
	for i, col := range on {
		parts[i] = ValueKey(row[col])
	}
	return strings.Join(parts, "\x00")
}
