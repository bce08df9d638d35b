// pkg/cleaner/pipeline.go
package cleaner

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// Pipeline reconciles the violations, inspections and inventory tables.
// It holds no table state between calls and never writes to its inputs.
type Pipeline struct {
	logger *zap.Logger
	now    func() time.Time
}

// Result is the output of one clean run
type Result struct {
	Violations  *model.Table
	Inspections *model.Table
	Inventory   *model.Table
	Report      *Report
	Operations  []model.CleaningOperation
}

// NewPipeline creates a pipeline; a nil logger disables logging
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		logger: logger.Named("pipeline"),
		now:    time.Now,
	}
}

// Clean runs the reconciliation steps in strict sequence.
// Any failure aborts the run and no partial tables are returned.
func (p *Pipeline) Clean(ctx context.Context, violations, inspections, inventory *model.Table) (*Result, error) {
	report := p.newReport("sequential", violations, inspections, inventory)

	// Step 1: precondition
	if err := checkPrecondition(inspections); err != nil {
		return nil, err
	}

	// Step 2-3: prune administrative columns, normalize dates
	var (
		pruned  *model.Table
		dropped []string
		err     error
	)
	report.time("prune", func() { pruned, dropped = PruneColumns(inspections) })
	report.DroppedColumns = dropped

	var dated *model.Table
	report.time("dates", func() { dated, err = NormalizeDates(pruned, model.ColActivityDate) })
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 4: join violations to inspection serial numbers
	var joined *JoinResult
	report.time("join", func() { joined, err = JoinSerialNumbers(violations, dated) })
	if err != nil {
		return nil, fmt.Errorf("failed to join violations: %w", err)
	}

	// Step 5: derive seat numbers on inspections and inventory
	var derivedInspections, derivedInventory *model.Table
	report.time("derive", func() {
		derivedInspections, err = DeriveSeatNumbers(dated, model.ColDescription)
		if err == nil {
			derivedInventory, err = DeriveSeatNumbers(inventory, model.ColDescription)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 6: inactive list from the derived inspections
	inactive, keys, err := inactiveKeys(derivedInspections)
	if err != nil {
		return nil, err
	}

	// Step 7-8: propagate exclusion, then self-filter inspections
	var cleanedInventory, cleanedViolations, cleanedInspections *model.Table
	report.time("exclude", func() {
		cleanedInventory, err = DeleteByFacilityID(keys.FacilityIDs, derivedInventory)
		if err != nil {
			return
		}
		cleanedViolations, err = DeleteBySerialNumber(keys.SerialNumbers, joined.Table)
		if err != nil {
			return
		}
		cleanedInspections, err = RemoveInactive(derivedInspections)
	})
	if err != nil {
		return nil, err
	}

	// Step 9: result
	return p.finish(report, stageOutput{
		joined:      joined,
		inspections: derivedInspections,
		inventory:   derivedInventory,
		inactive:    inactive,
		keys:        keys,
	}, cleanedViolations, cleanedInspections, cleanedInventory), nil
}

// stageOutput carries intermediate tables the report and audit trail are built from
type stageOutput struct {
	joined      *JoinResult
	inspections *model.Table // derived, before self-filtering
	inventory   *model.Table // derived, before exclusion
	inactive    *model.Table
	keys        ExclusionKeys
}

func (p *Pipeline) newReport(mode string, violations, inspections, inventory *model.Table) *Report {
	return &Report{
		RunID:         uuid.New().String(),
		Mode:          mode,
		StartTime:     p.now(),
		ViolationsIn:  violations.Len(),
		InspectionsIn: inspections.Len(),
		InventoryIn:   inventory.Len(),
		StepDurations: make(map[string]time.Duration),
	}
}

func (p *Pipeline) finish(report *Report, st stageOutput, violations, inspections, inventory *model.Table) *Result {
	report.EndTime = p.now()
	report.ViolationsMatched = st.joined.Matched
	report.ViolationsUnmatched = st.joined.Unmatched
	report.JoinFanOut = st.joined.FanOut
	report.SeatNumbersDerived = countPresent(st.inspections, model.ColSeatNumbers) +
		countPresent(st.inventory, model.ColSeatNumbers)
	report.InactiveInspections = st.inactive.Len()
	report.InactiveFacilities = len(st.keys.FacilityIDs)
	report.ExcludedInventory = st.inventory.Len() - inventory.Len()
	report.ExcludedViolations = st.joined.Table.Len() - violations.Len()
	report.ViolationsOut = violations.Len()
	report.InspectionsOut = inspections.Len()
	report.InventoryOut = inventory.Len()

	result := &Result{
		Violations:  violations.WithState(model.StateCleaned),
		Inspections: inspections.WithState(model.StateCleaned),
		Inventory:   inventory.WithState(model.StateCleaned),
		Report:      report,
		Operations:  buildOperations(report, st, report.EndTime),
	}

	p.logger.Info("Cleaned inspection datasets",
		zap.String("runID", report.RunID),
		zap.String("mode", report.Mode),
		zap.Duration("duration", report.Duration()),
		zap.Int("violations", report.ViolationsOut),
		zap.Int("inspections", report.InspectionsOut),
		zap.Int("inventory", report.InventoryOut),
		zap.Int("unmatchedViolations", report.ViolationsUnmatched),
		zap.Int("joinFanOut", report.JoinFanOut))
	if report.ViolationsUnmatched > 0 {
		p.logger.Warn("Violations dropped by serial number join",
			zap.String("runID", report.RunID),
			zap.Int("count", report.ViolationsUnmatched))
	}
	return result
}

// checkPrecondition rejects inspections that have already been through cleaning
func checkPrecondition(inspections *model.Table) error {
	if inspections.State == model.StateCleaned {
		return &model.AlreadyCleanedError{Table: inspections.Name, Reason: "table is tagged cleaned"}
	}
	if !inspections.HasColumn(model.ColOwnerID) {
		return &model.AlreadyCleanedError{
			Table:  inspections.Name,
			Reason: fmt.Sprintf("column %q is absent", model.ColOwnerID),
		}
	}
	return nil
}

// PruneColumns drops the administrative columns, tolerating any that are missing
func PruneColumns(inspections *model.Table) (*model.Table, []string) {
	return inspections.DropColumns(model.AdministrativeColumns()...)
}

// NormalizeDates parses column into time.Time values, inferring the layout.
// Blank cells become nil; an unparsable cell fails the whole table.
func NormalizeDates(t *model.Table, column string) (*model.Table, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}

	parser := &dateParser{}
	rows := make([]model.Row, len(t.Rows))
	for i, row := range t.Rows {
		parsed, err := parser.parse(row[column])
		if err != nil {
			return nil, &model.DateParseError{Column: column, Row: i, Value: row[column], Err: err}
		}
		r := maps.Clone(row)
		if r == nil {
			r = model.Row{}
		}
		r[column] = parsed
		rows[i] = r
	}
	return t.WithRows(rows), nil
}

func inactiveKeys(inspections *model.Table) (*model.Table, ExclusionKeys, error) {
	inactive, err := InactiveList(inspections)
	if err != nil {
		return nil, ExclusionKeys{}, err
	}
	keys, err := ExclusionKeysFrom(inactive)
	if err != nil {
		return nil, ExclusionKeys{}, err
	}
	return inactive, keys, nil
}

func countPresent(t *model.Table, column string) int {
	n := 0
	for _, row := range t.Rows {
		if row[column] != nil {
			n++
		}
	}
	return n
}
