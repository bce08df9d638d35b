package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/connector"
	"github.com/David-Botos/food-inspections/pkg/ingest"
	"github.com/David-Botos/food-inspections/pkg/model"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <csv>...",
		Short: "Load CSV exports into the collection store",
		Long: `Read one CSV export per dataset, drop incomplete and duplicate rows,
work out which dataset each file holds from its columns and replace the
matching collections.

Example:
  inspections ingest inspections.csv violations.csv inventory.csv`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			datasets, err := ingest.NewLoader(rootOpts.logger).LoadFiles(ctx, args...)
			if err != nil {
				return ingestErr(err)
			}
			return rootOpts.saveDatasets(ctx, cmd, datasets)
		},
	}
}

// IngestTableOptions holds flags for the ingest-table command.
type IngestTableOptions struct {
	*RootOptions
	Source string
	Tables []string
}

// NewIngestTableCommand creates the ingest-table command.
func NewIngestTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestTableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest-table",
		Short: "Load raw datasets from PostgreSQL or Snowflake tables",
		Long: `Read whole tables from a source database and ingest them like CSV exports.

Example:
  inspections ingest-table --source postgres --table raw.inspections --table raw.violations
  inspections ingest-table --source snowflake --table INVENTORY`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestTable(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", connector.SourcePostgres, "source database (postgres|snowflake)")
	cmd.Flags().StringArrayVar(&opts.Tables, "table", nil, "table to read, repeatable (required)")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runIngestTable(opts *IngestTableOptions, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)

	src, err := connector.NewConnectorFactory(opts.cfg, opts.logger).CreateSource(ctx, opts.Source)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to source", err)
	}
	defer src.Close()

	if err := src.Validate(ctx); err != nil {
		return WrapExitError(ExitFailure, "source validation failed", err)
	}

	tables := make([]*model.Table, 0, len(opts.Tables))
	for _, name := range opts.Tables {
		t, err := src.ReadTable(ctx, name)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read source table", err)
		}
		tables = append(tables, t)
	}

	datasets, err := ingest.NewLoader(opts.logger).Load(tables...)
	if err != nil {
		return ingestErr(err)
	}
	return opts.saveDatasets(ctx, cmd, datasets)
}

func ingestErr(err error) error {
	if errors.Is(err, ingest.ErrUnknownDataset) || errors.Is(err, ingest.ErrDuplicateDataset) {
		return WrapExitError(ExitCommandError, "failed to ingest", err)
	}
	return WrapExitError(ExitFailure, "failed to ingest", err)
}

// saveDatasets replaces one collection per loaded dataset
func (o *RootOptions) saveDatasets(ctx context.Context, cmd *cobra.Command, datasets ingest.Datasets) error {
	st, err := o.openStore(ctx)
	if err != nil {
		return err
	}
	defer o.closeStore(st)

	for _, kind := range model.Kinds() {
		t, ok := datasets[kind]
		if !ok {
			continue
		}
		if err := st.Replace(ctx, string(kind), kind, t); err != nil {
			return WrapExitError(ExitFailure, "failed to store "+string(kind), err)
		}
		printf(cmd, "Ingested %-12s %d rows\n", kind, t.Len())
	}

	if missing := datasets.Missing(); len(missing) > 0 {
		o.logger.Info("Some datasets were not part of this ingest",
			zap.Any("missing", missing))
	}
	return nil
}
