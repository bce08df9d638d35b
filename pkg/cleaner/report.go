package cleaner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Report tracks what a clean run did to the three tables
type Report struct {
	mu sync.Mutex

	RunID     string
	Mode      string
	StartTime time.Time
	EndTime   time.Time

	DroppedColumns []string

	ViolationsIn  int
	InspectionsIn int
	InventoryIn   int

	ViolationsMatched   int
	ViolationsUnmatched int
	JoinFanOut          int
	SeatNumbersDerived  int
	InactiveInspections int
	InactiveFacilities  int
	ExcludedInventory   int
	ExcludedViolations  int

	ViolationsOut  int
	InspectionsOut int
	InventoryOut   int

	StepDurations map[string]time.Duration
}

// time runs fn and records its duration under step. Safe for concurrent use.
func (r *Report) time(step string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.StepDurations[step] += elapsed
}

// Duration returns the total duration of the run
func (r *Report) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateReport creates a human-readable summary of the run
func (r *Report) GenerateReport() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := fmt.Sprintf(`
Clean Run Report
================
Run ID:                  %s
Mode:                    %s
Duration:                %s

Rows (in -> out)
----------------
Violations:              %d -> %d
Inspections:             %d -> %d
Inventory:               %d -> %d

Reconciliation
--------------
Dropped Columns:         %d
Violations Matched:      %d
Violations Unmatched:    %d
Join Fan-out Rows:       %d
Seat Numbers Derived:    %d
Inactive Inspections:    %d
Inactive Facilities:     %d
Excluded Inventory:      %d
Excluded Violations:     %d
`,
		r.RunID,
		r.Mode,
		formatDuration(r.Duration()),

		r.ViolationsIn, r.ViolationsOut,
		r.InspectionsIn, r.InspectionsOut,
		r.InventoryIn, r.InventoryOut,

		len(r.DroppedColumns),
		r.ViolationsMatched,
		r.ViolationsUnmatched,
		r.JoinFanOut,
		r.SeatNumbersDerived,
		r.InactiveInspections,
		r.InactiveFacilities,
		r.ExcludedInventory,
		r.ExcludedViolations,
	)

	if len(r.StepDurations) > 0 {
		steps := make([]string, 0, len(r.StepDurations))
		for step := range r.StepDurations {
			steps = append(steps, step)
		}
		sort.Strings(steps)

		var b strings.Builder
		b.WriteString("\nStep Timings\n------------\n")
		for _, step := range steps {
			fmt.Fprintf(&b, "- %s: %s\n", step, formatDuration(r.StepDurations[step]))
		}
		report += b.String()
	}

	return report
}

// ToJSON serializes the report to JSON
func (r *Report) ToJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return json.Marshal(struct {
		RunID               string           `json:"runId"`
		Mode                string           `json:"mode"`
		StartTime           time.Time        `json:"startTime"`
		EndTime             time.Time        `json:"endTime"`
		DroppedColumns      []string         `json:"droppedColumns"`
		ViolationsIn        int              `json:"violationsIn"`
		InspectionsIn       int              `json:"inspectionsIn"`
		InventoryIn         int              `json:"inventoryIn"`
		ViolationsMatched   int              `json:"violationsMatched"`
		ViolationsUnmatched int              `json:"violationsUnmatched"`
		JoinFanOut          int              `json:"joinFanOut"`
		SeatNumbersDerived  int              `json:"seatNumbersDerived"`
		InactiveInspections int              `json:"inactiveInspections"`
		InactiveFacilities  int              `json:"inactiveFacilities"`
		ExcludedInventory   int              `json:"excludedInventory"`
		ExcludedViolations  int              `json:"excludedViolations"`
		ViolationsOut       int              `json:"violationsOut"`
		InspectionsOut      int              `json:"inspectionsOut"`
		InventoryOut        int              `json:"inventoryOut"`
		StepDurationsMs     map[string]int64 `json:"stepDurationsMs"`
	}{
		RunID:               r.RunID,
		Mode:                r.Mode,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		DroppedColumns:      r.DroppedColumns,
		ViolationsIn:        r.ViolationsIn,
		InspectionsIn:       r.InspectionsIn,
		InventoryIn:         r.InventoryIn,
		ViolationsMatched:   r.ViolationsMatched,
		ViolationsUnmatched: r.ViolationsUnmatched,
		JoinFanOut:          r.JoinFanOut,
		SeatNumbersDerived:  r.SeatNumbersDerived,
		InactiveInspections: r.InactiveInspections,
		InactiveFacilities:  r.InactiveFacilities,
		ExcludedInventory:   r.ExcludedInventory,
		ExcludedViolations:  r.ExcludedViolations,
		ViolationsOut:       r.ViolationsOut,
		InspectionsOut:      r.InspectionsOut,
		InventoryOut:        r.InventoryOut,
		StepDurationsMs:     millis(r.StepDurations),
	})
}

func millis(durations map[string]time.Duration) map[string]int64 {
	out := make(map[string]int64, len(durations))
	for step, d := range durations {
		out[step] = d.Milliseconds()
	}
	return out
}
