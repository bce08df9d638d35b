package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/export"
	"github.com/David-Botos/food-inspections/pkg/model"
)

// ValidFormats defines the allowed output formats for aggregate.
var ValidFormats = []string{"text", "json", "csv"}

// AggregateOptions holds flags for the aggregate command.
type AggregateOptions struct {
	*RootOptions
	By     string
	Format string
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AggregateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Summarise inspection scores per group and year",
		Long: `Print the mean, median and mode inspection score per calendar year,
grouped by seating description or by zip code. Requires cleaned collections.

Example:
  inspections aggregate --by zip --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.By, "by", "seating", "grouping (seating|zip)")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json|csv)")

	return cmd
}

func runAggregate(opts *AggregateOptions, cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}
	choice, err := aggregate.ParseGrouping(opts.By)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid grouping", err)
	}

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

	rows, err := sess.Aggregate(choice)
	if err != nil {
		return dataErr("failed to aggregate", err)
	}
	return writeAggregates(cmd, opts.Format, choice, rows)
}

func writeAggregates(cmd *cobra.Command, format string, choice aggregate.Grouping, rows []model.AggregateRow) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if rows == nil {
			rows = []model.AggregateRow{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "csv":
		return export.WriteAggregatesCSV(out, choice, rows)
	default:
		return aggregate.WriteReport(out, choice, rows)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
