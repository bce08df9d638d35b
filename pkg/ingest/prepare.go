// pkg/ingest/prepare.go
package ingest

import (
	"errors"
	"strings"

	"github.com/David-Botos/food-inspections/pkg/cleaner"
	"github.com/David-Botos/food-inspections/pkg/model"
)

var (
	// ErrUnknownDataset is returned when a table matches none of the three datasets
	ErrUnknownDataset = errors.New("table does not look like inspections, violations or inventory")
	// ErrDuplicateDataset is returned when two inputs classify as the same dataset
	ErrDuplicateDataset = errors.New("dataset supplied more than once")
)

// PrepareStats counts what Prepare removed
type PrepareStats struct {
	RowsIn            int
	DroppedIncomplete int
	DroppedDuplicates int
}

// Prepare drops rows with any missing cell, then exact duplicate rows, keeping the first occurrence
func Prepare(t *model.Table) (*model.Table, PrepareStats) {
	stats := PrepareStats{RowsIn: t.Len()}

	seen := make(map[string]struct{}, t.Len())
	kept := t.Filter(func(r model.Row) bool {
		parts := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			v, ok := r[col]
			if !ok || v == nil {
				stats.DroppedIncomplete++
				return false
			}
			parts[i] = cleaner.ValueKey(v)
		}

		key := strings.Join(parts, "\x1f")
		if _, dup := seen[key]; dup {
			stats.DroppedDuplicates++
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return kept, stats
}

// Classify decides which dataset a table holds from its columns.
// Inspections also carry serial numbers and facility IDs, so the activity date is checked first.
func Classify(t *model.Table) (model.DatasetKind, error) {
	switch {
	case t.HasColumn(model.ColActivityDate):
		return model.KindInspections, nil
	case t.HasColumn(model.ColSerialNumber):
		return model.KindViolations, nil
	case t.HasColumn(model.ColFacilityID):
		return model.KindInventory, nil
	default:
		return "", ErrUnknownDataset
	}
}
