package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/David-Botos/food-inspections/pkg/aggregate"
	"github.com/David-Botos/food-inspections/pkg/model"
	"github.com/David-Botos/food-inspections/pkg/store"
)

// ViolationsOptions holds flags for the violations command.
type ViolationsOptions struct {
	*RootOptions
	Top   int
	ByZip bool
}

// NewViolationsCommand creates the violations command.
func NewViolationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViolationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "violations",
		Short: "Count stored violations by code or by zip code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViolations(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Top, "top", -1, "number of most cited codes to print, 0 for all (default $TOP_VIOLATION_CODES)")
	cmd.Flags().BoolVar(&opts.ByZip, "by-zip", false, "count violations per zip code instead")

	return cmd
}

func runViolations(opts *ViolationsOptions, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	violations, err := st.Read(ctx, string(model.KindViolations))
	if errors.Is(err, store.ErrCollectionNotFound) {
		return WrapExitError(ExitCommandError, "run ingest first", err)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load violations", err)
	}

	if opts.ByZip {
		counts, err := aggregate.ViolationsByZip(violations)
		if err != nil {
			return dataErr("failed to count violations", err)
		}
		for _, c := range counts {
			printf(cmd, "%-8s %6d\n", c.ZipCode, c.Count)
		}
		return nil
	}

	top := opts.Top
	if top < 0 {
		top = opts.cfg.TopViolationCodes
	}
	codes, err := aggregate.TopViolationCodes(violations, top)
	if err != nil {
		return dataErr("failed to count violations", err)
	}
	return aggregate.WriteViolationCodes(cmd.OutOrStdout(), codes)
}
