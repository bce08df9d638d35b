package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/cleaner"
	"github.com/David-Botos/food-inspections/pkg/model"
	"github.com/David-Botos/food-inspections/pkg/store"
)

func rawSession() *Session {
	inspections := model.NewTable("inspections",
		[]string{
			model.ColOwnerID, model.ColFacilityID, model.ColSerialNumber, model.ColZipCode,
			model.ColProgramStatus, model.ColDescription, model.ColScore, model.ColActivityDate,
		},
		model.Row{
			model.ColOwnerID: "OW1", model.ColFacilityID: "FA1", model.ColSerialNumber: "S1",
			model.ColZipCode: "90001", model.ColProgramStatus: "ACTIVE",
			model.ColDescription: "RESTAURANT (0-30) SEATS", model.ColScore: "92", model.ColActivityDate: "05/01/2019",
		},
		model.Row{
			model.ColOwnerID: "OW1", model.ColFacilityID: "FA1", model.ColSerialNumber: "S2",
			model.ColZipCode: "90001", model.ColProgramStatus: "ACTIVE",
			model.ColDescription: "RESTAURANT (0-30) SEATS", model.ColScore: "88", model.ColActivityDate: "06/01/2019",
		},
		model.Row{
			model.ColOwnerID: "OW2", model.ColFacilityID: "FA2", model.ColSerialNumber: "S3",
			model.ColZipCode: "90002", model.ColProgramStatus: "INACTIVE",
			model.ColDescription: "RESTAURANT (31-60) SEATS", model.ColScore: "70", model.ColActivityDate: "07/01/2019",
		},
	)
	violations := model.NewTable("violations", []string{model.ColSerialNumber, model.ColViolationCode},
		model.Row{model.ColSerialNumber: "S1", model.ColViolationCode: "F023"},
		model.Row{model.ColSerialNumber: "S3", model.ColViolationCode: "F044"},
	)
	inventory := model.NewTable("inventory", []string{model.ColFacilityID, model.ColDescription},
		model.Row{model.ColFacilityID: "FA1", model.ColDescription: "RESTAURANT (0-30) SEATS"},
		model.Row{model.ColFacilityID: "FA2", model.ColDescription: "RESTAURANT (31-60) SEATS"},
	)
	return New(violations, inspections, inventory)
}

func TestSessionClean(t *testing.T) {
	s := rawSession()
	p := cleaner.NewPipeline(zaptest.NewLogger(t))

	outcome, err := s.Clean(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleaned, outcome)
	assert.Equal(t, model.StateCleaned, s.State)
	assert.Equal(t, 2, s.Inspections.Len())
	assert.Equal(t, []interface{}{"S1"}, s.Violations.Values(model.ColSerialNumber))
	assert.Equal(t, []interface{}{"90001"}, s.Violations.Values(model.ColZipCode))
	assert.Equal(t, []interface{}{"FA1"}, s.Inventory.Values(model.ColFacilityID))
	require.NotNil(t, s.Report)
	assert.NotEmpty(t, s.Operations)

	// a second request is a no-op
	before := s.Inspections
	outcome, err = s.Clean(context.Background(), p, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCleaned, outcome)
	assert.Same(t, before, s.Inspections)
}

func TestSessionCleanParallelMatchesSequential(t *testing.T) {
	p := cleaner.NewPipeline(nil)
	seq, par := rawSession(), rawSession()

	_, err := seq.Clean(context.Background(), p, false)
	require.NoError(t, err)
	_, err = par.Clean(context.Background(), p, true)
	require.NoError(t, err)

	assert.Equal(t, seq.Violations, par.Violations)
	assert.Equal(t, seq.Inspections, par.Inspections)
	assert.Equal(t, seq.Inventory, par.Inventory)
}

func TestSessionCleanMalformedLeavesSessionUntouched(t *testing.T) {
	s := rawSession()
	s.Inspections.Rows[1][model.ColActivityDate] = "not a date"
	before := s.Inspections

	outcome, err := s.Clean(context.Background(), cleaner.NewPipeline(nil), false)

	assert.Equal(t, OutcomeMalformed, outcome)
	var dateErr *model.DateParseError
	require.True(t, errors.As(err, &dateErr))
	assert.Equal(t, 1, dateErr.Row)
	assert.Same(t, before, s.Inspections)
	assert.Equal(t, model.StateRaw, s.State)
	assert.Nil(t, s.Report)
}

func TestSessionCleanWithoutAdministrativeColumns(t *testing.T) {
	s := rawSession()
	s.Inspections, _ = s.Inspections.DropColumns(model.ColOwnerID)

	outcome, err := s.Clean(context.Background(), cleaner.NewPipeline(nil), false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCleaned, outcome)
	assert.Equal(t, model.StateRaw, s.State)
}

func TestSessionCleanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := rawSession().Clean(ctx, cleaner.NewPipeline(nil), false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestSessionAggregate(t *testing.T) {
	s := rawSession()

	_, err := s.Aggregate(aggregate.ByZipCode)
	var shape *model.InvalidShapeError
	require.True(t, errors.As(err, &shape))

	_, err = s.Clean(context.Background(), cleaner.NewPipeline(nil), false)
	require.NoError(t, err)

	rows, err := s.Aggregate(aggregate.BySeating)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "RESTAURANT  SEATS", rows[0].Group)
	assert.Equal(t, 90.0, rows[0].Mean)
	assert.Equal(t, 2, rows[0].Count)
}

func TestSessionSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "session.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer st.Close()

	s := rawSession()
	_, err = s.Clean(ctx, cleaner.NewPipeline(nil), false)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, st))

	loaded, err := Load(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, model.StateCleaned, loaded.State)
	assert.Equal(t, s.Inspections.Rows, loaded.Inspections.Rows)
	assert.Equal(t, s.Violations.Rows, loaded.Violations.Rows)
	assert.NotEqual(t, s.ID, loaded.ID)

	outcome, err := loaded.Clean(ctx, cleaner.NewPipeline(nil), false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCleaned, outcome)
}

func TestLoadMissingCollections(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "empty.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	_, err = Load(ctx, st)
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}
