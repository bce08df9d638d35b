// pkg/model/cleaning.go
package model

import (
	"time"
)

// Cleaning operation names recorded in the audit trail
const (
	OpColumnDropped      = "column_dropped"
	OpDateNormalized     = "date_normalized"
	OpSeatNumbersDerived = "seat_numbers_derived"
	OpViolationUnmatched = "violation_unmatched"
	OpRowExcluded        = "row_excluded"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	RunID             string      // Clean run that produced the operation
	Dataset           string      // Table name (inspections, violations, inventory)
	ColumnName        string      // Column that was cleaned
	OriginalValue     interface{} // Original value (may be nil)
	NewValue          string      // New value after cleaning
	RowIdentifier     string      // Serial number, facility ID or row index
	CleaningOperation string      // Type of cleaning performed (e.g., "row_excluded")
	CleaningReason    string      // Reason for cleaning (e.g., "inactive_facility")
	CleanedAt         time.Time   // When the cleaning occurred
}

// AggregateRow is one (group, year) summary of inspection scores
type AggregateRow struct {
	Group  string    `json:"group"`
	Year   int       `json:"year"`
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
	Mode   float64   `json:"mode"`
	Modes  []float64 `json:"modes"`
	Count  int       `json:"count"`
}
