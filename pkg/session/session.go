// pkg/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/cleaner"
	"github.com/David-Botos/food-inspections/pkg/model"
	"github.com/David-Botos/food-inspections/pkg/store"
)

// Outcome reports what a clean request did
type Outcome int

const (
	// OutcomeFailed means the run stopped for a reason unrelated to the data, such as cancellation
	OutcomeFailed Outcome = iota
	// OutcomeCleaned means the tables were replaced by their cleaned versions
	OutcomeCleaned
	// OutcomeAlreadyCleaned means nothing was done because the session was already cleaned
	OutcomeAlreadyCleaned
	// OutcomeMalformed means a table lacked a required column or held an unparsable value
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCleaned:
		return "cleaned"
	case OutcomeAlreadyCleaned:
		return "already cleaned"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "failed"
	}
}

// Session holds the three datasets of one analysis and how far cleaning has gone
type Session struct {
	ID          string
	Violations  *model.Table
	Inspections *model.Table
	Inventory   *model.Table
	State       model.State

	// Set by a successful Clean
	Report     *cleaner.Report
	Operations []model.CleaningOperation
}

// New creates a session over the three tables. Its state follows the inspections table.
func New(violations, inspections, inventory *model.Table) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Violations:  violations,
		Inspections: inspections,
		Inventory:   inventory,
		State:       inspections.State,
	}
}

// Clean runs the pipeline and, on success, swaps in the cleaned tables.
// A session that is already cleaned is left alone and reports OutcomeAlreadyCleaned with a nil error.
func (s *Session) Clean(ctx context.Context, p *cleaner.Pipeline, parallel bool) (Outcome, error) {
	if s.State == model.StateCleaned {
		return OutcomeAlreadyCleaned, nil
	}

	var (
		res *cleaner.Result
		err error
	)
	if parallel {
		res, err = p.CleanParallel(ctx, s.Violations, s.Inspections, s.Inventory)
	} else {
		res, err = p.Clean(ctx, s.Violations, s.Inspections, s.Inventory)
	}
	if err != nil {
		outcome := classify(err)
		if outcome == OutcomeAlreadyCleaned {
			return outcome, nil
		}
		return outcome, err
	}

	s.Violations = res.Violations
	s.Inspections = res.Inspections
	s.Inventory = res.Inventory
	s.State = model.StateCleaned
	s.Report = res.Report
	s.Operations = res.Operations
	return OutcomeCleaned, nil
}

func classify(err error) Outcome {
	var (
		already *model.AlreadyCleanedError
		missing *model.MissingColumnError
		date    *model.DateParseError
		shape   *model.InvalidShapeError
	)
	switch {
	case errors.As(err, &already):
		return OutcomeAlreadyCleaned
	case errors.As(err, &missing), errors.As(err, &date), errors.As(err, &shape):
		return OutcomeMalformed
	default:
		return OutcomeFailed
	}
}

// Aggregate summarises the session's inspection scores by the chosen grouping
func (s *Session) Aggregate(choice aggregate.Grouping) ([]model.AggregateRow, error) {
	return aggregate.Aggregate(choice, s.Inspections)
}

func (s *Session) table(kind model.DatasetKind) *model.Table {
	switch kind {
	case model.KindViolations:
		return s.Violations
	case model.KindInspections:
		return s.Inspections
	default:
		return s.Inventory
	}
}

// Save replaces the violations, inspections and inventory collections with the session's tables
func (s *Session) Save(ctx context.Context, st *store.Store) error {
	for _, kind := range model.Kinds() {
		t := s.table(kind)
		if t == nil {
			return fmt.Errorf("session has no %s table", kind)
		}
		// Stored state follows the session, so a cleaned session is never cleaned twice
		if err := st.Replace(ctx, string(kind), kind, t.WithState(s.State)); err != nil {
			return fmt.Errorf("failed to save %s: %w", kind, err)
		}
	}
	return nil
}

// Load rebuilds a session from the three stored collections
func Load(ctx context.Context, st *store.Store) (*Session, error) {
	tables := make(map[model.DatasetKind]*model.Table, 3)
	for _, kind := range model.Kinds() {
		t, err := st.Read(ctx, string(kind))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", kind, err)
		}
		tables[kind] = t
	}
	return New(tables[model.KindViolations], tables[model.KindInspections], tables[model.KindInventory]), nil
}
