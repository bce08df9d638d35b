package cli

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write summaries and cleaned collections to an XLSX workbook",
		Long: `Write both aggregates, the violation code counts and the three cleaned
collections to one workbook, a sheet each.

Example:
  inspections export --out report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "path of the workbook to write (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	sess, err := loadSession(ctx, st)
	if err != nil {
		return err
	}

	bySeating, err := sess.Aggregate(aggregate.BySeating)
	if err != nil {
		return dataErr("failed to aggregate by seating", err)
	}
	byZip, err := sess.Aggregate(aggregate.ByZipCode)
	if err != nil {
		return dataErr("failed to aggregate by zip code", err)
	}
	codes, err := aggregate.TopViolationCodes(sess.Violations, 0)
	if err != nil {
		return dataErr("failed to count violation codes", err)
	}
	zips, err := aggregate.ViolationsByZip(sess.Violations)
	if err != nil {
		return dataErr("failed to count violations by zip code", err)
	}

	err = export.WriteWorkbook(opts.Output,
		export.AggregateSheet("By seating", aggregate.BySeating, bySeating),
		export.AggregateSheet("By zip code", aggregate.ByZipCode, byZip),
		export.ViolationCodeSheet("Violation codes", codes),
		export.ZipCountSheet("Violations by zip code", zips),
		export.TableSheet(sess.Inspections),
		export.TableSheet(sess.Violations),
		export.TableSheet(sess.Inventory),
	)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to write workbook", err)
	}

	printf(cmd, "Wrote %s\n", opts.Output)
	return nil
}
