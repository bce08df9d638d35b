package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the stored collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer rootOpts.closeStore(st)

			list, err := st.Collections(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list collections", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTATE\tROWS\tCOLUMNS\tUPDATED")
			for _, md := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					md.Name, md.State, md.RowCount, len(md.Columns), md.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}
