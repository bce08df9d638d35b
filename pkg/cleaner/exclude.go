// pkg/cleaner/exclude.go
package cleaner

import (
	"github.com/David-Botos/food-inspections/pkg/model"
)

// DeleteByFacilityID returns the rows of t whose FACILITY ID is not in excluded.
// Filtering is row-wise, so duplicate facility rows that survive are all kept.
func DeleteByFacilityID(excluded []interface{}, t *model.Table) (*model.Table, error) {
	return deleteByKey(model.ColFacilityID, excluded, t)
}

// DeleteBySerialNumber returns the rows of t whose SERIAL NUMBER is not in excluded
func DeleteBySerialNumber(excluded []interface{}, t *model.Table) (*model.Table, error) {
	return deleteByKey(model.ColSerialNumber, excluded, t)
}

func deleteByKey(column string, excluded []interface{}, t *model.Table) (*model.Table, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	set := keySet(excluded)
	return t.Filter(func(r model.Row) bool {
		_, drop := set[ValueKey(r[column])]
		return !drop
	}), nil
}
