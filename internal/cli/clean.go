package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/cleaner"
	"github.com/David-Botos/food-inspections/pkg/session"
)

// CleanOptions holds flags for the clean command.
type CleanOptions struct {
	*RootOptions
	Parallel bool
	JSON     bool
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Reconcile the stored collections",
		Long: `Clean the stored inspections, violations and inventory together and
write the cleaned collections back. Every change is recorded in the
cleaning_operations table under the run ID printed in the report.

Cleaning twice is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "run independent steps concurrently (default $CLEAN_PARALLEL)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the report as JSON")

	return cmd
}

func runClean(opts *CleanOptions, cmd *cobra.Command) error {
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

	pipeline := cleaner.NewPipeline(opts.logger)
	outcome, err := sess.Clean(ctx, pipeline, opts.Parallel || opts.cfg.Clean.Parallel)
	switch outcome {
	case session.OutcomeAlreadyCleaned:
		printf(cmd, "Collections are already cleaned, nothing to do\n")
		return nil
	case session.OutcomeMalformed:
		return WrapExitError(ExitMalformed, "collections cannot be cleaned", err)
	case session.OutcomeFailed:
		return WrapExitError(ExitFailure, "clean failed", err)
	}

	// Audit rows go in before the collections flip to cleaned, so a failed
	// audit leaves the run repeatable.
	recorder, err := cleaner.NewAuditRecorder(ctx, st.DB(), opts.logger)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open audit trail", err)
	}
	if err := recorder.RecordCleaningOperations(ctx, sess.Operations); err != nil {
		return WrapExitError(ExitFailure, "failed to record cleaning operations", err)
	}

	if err := sess.Save(ctx, st); err != nil {
		return WrapExitError(ExitFailure, "failed to save cleaned collections", err)
	}

	opts.logger.Info("Clean finished",
		zap.String("sessionID", sess.ID),
		zap.String("runID", sess.Report.RunID),
		zap.Int("operations", len(sess.Operations)))

	if opts.JSON {
		b, err := sess.Report.ToJSON()
		if err != nil {
			return WrapExitError(ExitFailure, "failed to encode report", err)
		}
		printf(cmd, "%s\n", b)
		return nil
	}
	printf(cmd, "%s", sess.Report.GenerateReport())
	return nil
}
