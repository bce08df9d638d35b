// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// AuditRecorder persists the cleaning operations of a run into the cleaning_operations table
type AuditRecorder struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAuditRecorder creates a recorder and ensures the tracking table exists
func NewAuditRecorder(ctx context.Context, db *sqlx.DB, logger *zap.Logger) (*AuditRecorder, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	recorder := &AuditRecorder{
		db:     db,
		logger: logger,
	}

	// Ensure the tracking table exists
	if err := recorder.setupTrackingTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup cleaning table: %w", err)
	}

	return recorder, nil
}

// setupTrackingTable ensures the cleaning_operations tracking table exists
func (r *AuditRecorder) setupTrackingTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS cleaning_operations (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			dataset TEXT NOT NULL,
			column_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			row_identifier TEXT NOT NULL,
			cleaning_operation TEXT NOT NULL,
			cleaning_reason TEXT NOT NULL,
			cleaned_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, seq)
		)
	`
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	r.logger.Debug("Ensured cleaning_operations table exists")
	return nil
}

// RecordCleaningOperations batch inserts cleaning operations into the tracking table
func (r *AuditRecorder) RecordCleaningOperations(ctx context.Context, operations []model.CleaningOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Begin transaction
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	// Prepare statement
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO cleaning_operations
		(run_id, seq, dataset, column_name, original_value, new_value,
		 row_identifier, cleaning_operation, cleaning_reason, cleaned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	// Execute batch insert
	for i, op := range operations {
		_, err = stmt.ExecContext(ctx,
			op.RunID,
			i,
			op.Dataset,
			op.ColumnName,
			toNullableString(op.OriginalValue),
			op.NewValue,
			op.RowIdentifier,
			op.CleaningOperation,
			op.CleaningReason,
			op.CleanedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	// Commit transaction
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded cleaning operations", zap.Int("count", len(operations)))
	return nil
}

// OperationCounts returns how many operations of each kind a run recorded
func (r *AuditRecorder) OperationCounts(ctx context.Context, runID string) (map[string]int, error) {
	var rows []struct {
		Operation string `db:"cleaning_operation"`
		Count     int    `db:"n"`
	}
	query := r.db.Rebind(`
		SELECT cleaning_operation, COUNT(*) AS n
		FROM cleaning_operations
		WHERE run_id = ?
		GROUP BY cleaning_operation
	`)
	if err := r.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("failed to count cleaning operations: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Operation] = row.Count
	}
	return counts, nil
}

// buildOperations turns one run's intermediate tables into audit records
func buildOperations(report *Report, st stageOutput, at time.Time) []model.CleaningOperation {
	var ops []model.CleaningOperation
	op := func(dataset, column string, original interface{}, newValue, rowID, operation, reason string) {
		ops = append(ops, model.CleaningOperation{
			RunID:             report.RunID,
			Dataset:           dataset,
			ColumnName:        column,
			OriginalValue:     original,
			NewValue:          newValue,
			RowIdentifier:     rowID,
			CleaningOperation: operation,
			CleaningReason:    reason,
			CleanedAt:         at,
		})
	}

	inspections := string(model.KindInspections)
	violations := string(model.KindViolations)
	inventory := string(model.KindInventory)

	for _, col := range report.DroppedColumns {
		op(inspections, col, col, "", "*", model.OpColumnDropped, "administrative_column")
	}

	op(inspections, model.ColActivityDate, nil,
		strconv.Itoa(countPresent(st.inspections, model.ColActivityDate)), "*",
		model.OpDateNormalized, "inferred_layout")
	op(inspections, model.ColSeatNumbers, nil,
		strconv.Itoa(countPresent(st.inspections, model.ColSeatNumbers)), "*",
		model.OpSeatNumbersDerived, "parenthesized_description")
	op(inventory, model.ColSeatNumbers, nil,
		strconv.Itoa(countPresent(st.inventory, model.ColSeatNumbers)), "*",
		model.OpSeatNumbersDerived, "parenthesized_description")

	// The most specific join column identifies what failed to match
	if on := st.joined.On; len(on) > 0 {
		key := on[len(on)-1]
		for _, row := range st.joined.Unjoined {
			op(violations, key, row[key], "",
				rowIdentifier(row[model.ColIndex]), model.OpViolationUnmatched, "no_matching_inspection")
		}
	}

	facilities := keySet(st.keys.FacilityIDs)
	for _, row := range st.inventory.Rows {
		if _, ok := facilities[ValueKey(row[model.ColFacilityID])]; ok {
			op(inventory, model.ColFacilityID, row[model.ColFacilityID], "",
				rowIdentifier(row[model.ColFacilityID]), model.OpRowExcluded, "inactive_facility")
		}
	}

	serials := keySet(st.keys.SerialNumbers)
	for _, row := range st.joined.Table.Rows {
		if _, ok := serials[ValueKey(row[model.ColSerialNumber])]; ok {
			op(violations, model.ColSerialNumber, row[model.ColSerialNumber], "",
				rowIdentifier(row[model.ColIndex]), model.OpRowExcluded, "inactive_inspection")
		}
	}

	for _, row := range st.inactive.Rows {
		op(inspections, model.ColProgramStatus, row[model.ColProgramStatus], "",
			rowIdentifier(row[model.ColSerialNumber]), model.OpRowExcluded, "inactive_program_status")
	}

	return ops
}

// toNullableString renders an original value for storage, keeping nil as NULL
func toNullableString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := toString(v)
	return &s
}
