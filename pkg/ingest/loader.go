// pkg/ingest/loader.go
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// Datasets maps each classified dataset to its prepared table
type Datasets map[model.DatasetKind]*model.Table

// Loader reads raw datasets, prepares them and sorts them by kind
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("ingest")}
}

// LoadFiles reads every CSV file concurrently, then prepares and classifies them.
// Two files holding the same dataset fail with ErrDuplicateDataset.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) (Datasets, error) {
	tables := make([]*model.Table, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := ReadCSVFile(path)
			if err != nil {
				return err
			}
			l.logger.Debug("Read CSV file",
				zap.String("path", path),
				zap.Int("rows", t.Len()),
				zap.Int("columns", len(t.Columns)))
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read input files: %w", err)
	}

	return l.Load(tables...)
}

// Load prepares and classifies tables that were already read from some source
func (l *Loader) Load(tables ...*model.Table) (Datasets, error) {
	out := make(Datasets, len(tables))
	for _, t := range tables {
		kind, err := Classify(t)
		if err != nil {
			return nil, fmt.Errorf("failed to classify %s: %w", t.Name, err)
		}
		if prev, dup := out[kind]; dup {
			return nil, fmt.Errorf("%s and %s are both %s: %w", prev.Name, t.Name, kind, ErrDuplicateDataset)
		}

		prepared, stats := Prepare(t)
		prepared.Name = string(kind)
		out[kind] = prepared

		l.logger.Info("Prepared dataset",
			zap.String("source", t.Name),
			zap.String("kind", string(kind)),
			zap.Int("rowsIn", stats.RowsIn),
			zap.Int("droppedIncomplete", stats.DroppedIncomplete),
			zap.Int("droppedDuplicates", stats.DroppedDuplicates),
			zap.Int("rowsOut", prepared.Len()))
	}
	return out, nil
}

// Missing lists the dataset kinds not present, in the canonical order
func (d Datasets) Missing() []model.DatasetKind {
	var missing []model.DatasetKind
	for _, kind := range model.Kinds() {
		if _, ok := d[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	return missing
}
