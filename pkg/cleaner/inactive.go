// pkg/cleaner/inactive.go
package cleaner

import (
	"github.com/David-Botos/food-inspections/pkg/model"
)

// ExclusionKeys are derived from the inactive inspection rows
type ExclusionKeys struct {
	FacilityIDs   []interface{} // deduplicated, first-seen order
	SerialNumbers []interface{} // one per inactive row, duplicates kept
}

func isActive(row model.Row) bool {
	status, ok := row[model.ColProgramStatus].(string)
	return ok && status == model.StatusActive
}

// InactiveList returns the rows whose program status is not exactly ACTIVE
func InactiveList(t *model.Table) (*model.Table, error) {
	if err := t.Require(model.ColProgramStatus); err != nil {
		return nil, err
	}
	return t.Filter(func(r model.Row) bool { return !isActive(r) }), nil
}

// RemoveInactive returns the rows whose program status is exactly ACTIVE, in input order
func RemoveInactive(t *model.Table) (*model.Table, error) {
	if err := t.Require(model.ColProgramStatus); err != nil {
		return nil, err
	}
	return t.Filter(isActive), nil
}

// ExclusionKeysFrom collects the facility IDs and serial numbers of an inactive list
func ExclusionKeysFrom(inactive *model.Table) (ExclusionKeys, error) {
	if err := inactive.Require(model.ColFacilityID, model.ColSerialNumber); err != nil {
		return ExclusionKeys{}, err
	}

	keys := ExclusionKeys{
		FacilityIDs:   make([]interface{}, 0),
		SerialNumbers: make([]interface{}, 0, inactive.Len()),
	}
	seen := make(map[string]struct{})
	for _, row := range inactive.Rows {
		id := row[model.ColFacilityID]
		k := ValueKey(id)
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			keys.FacilityIDs = append(keys.FacilityIDs, id)
		}
		keys.SerialNumbers = append(keys.SerialNumbers, row[model.ColSerialNumber])
	}
	return keys, nil
}
