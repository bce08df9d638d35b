// pkg/model/metadata.go
package model

import (
	"fmt"
	"time"
)

// DatasetKind identifies which of the three inspection datasets a table holds
type DatasetKind string

const (
	KindInspections DatasetKind = "inspections"
	KindViolations  DatasetKind = "violations"
	KindInventory   DatasetKind = "inventory"
)

// Kinds returns the dataset kinds in session order (violations, inspections, inventory)
func Kinds() []DatasetKind {
	return []DatasetKind{KindViolations, KindInspections, KindInventory}
}

// ParseDatasetKind validates a dataset kind name
func ParseDatasetKind(s string) (DatasetKind, error) {
	switch DatasetKind(s) {
	case KindInspections, KindViolations, KindInventory:
		return DatasetKind(s), nil
	default:
		return "", fmt.Errorf("unknown dataset kind %q", s)
	}
}

// ValueKind describes how a stored column decodes back into Go values
type ValueKind string

const (
	ValueString ValueKind = "string"
	ValueNumber ValueKind = "number"
	ValueTime   ValueKind = "time"
	ValueBool   ValueKind = "bool"
)

// CollectionMetadata contains the structure information for a stored collection
type CollectionMetadata struct {
	Name      string      // Collection name
	Kind      DatasetKind // Dataset held by the collection
	State     State       // Raw or cleaned
	Columns   []Column    // Column definitions, in table order
	RowCount  int         // Number of documents
	UpdatedAt time.Time   // Last replace
}

// Column represents metadata about a stored column
type Column struct {
	Name string    `json:"name"`
	Kind ValueKind `json:"kind"`
}

// GetColumnByName returns a column by exact name
// Returns nil if column not found
func (cm *CollectionMetadata) GetColumnByName(name string) *Column {
	for i, col := range cm.Columns {
		if col.Name == name {
			return &cm.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in order
func (cm *CollectionMetadata) ColumnNames() []string {
	names := make([]string, len(cm.Columns))
	for i, col := range cm.Columns {
		names[i] = col.Name
	}
	return names
}

// DescribeColumns infers the value kind of each column from the first non-nil value.
// Columns with no values are reported as strings.
func DescribeColumns(t *Table) []Column {
	cols := make([]Column, len(t.Columns))
	for i, name := range t.Columns {
		cols[i] = Column{Name: name, Kind: ValueString}
		for _, row := range t.Rows {
			v := row[name]
			if v == nil {
				continue
			}
			cols[i].Kind = KindOf(v)
			break
		}
	}
	return cols
}

// KindOf classifies a single cell value
func KindOf(v interface{}) ValueKind {
	switch v.(type) {
	case time.Time:
		return ValueTime
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return ValueNumber
	case bool:
		return ValueBool
	default:
		return ValueString
	}
}
