package cli

import (
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/spf13/cobra"
)

func newSubmissionsCmd(app *App) *cobra.Command {
	var projectID uint64
	var method, status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "List recent contract calls, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := journal.ListOptions{
				Method: method,
				Status: journal.Status(status),
				Limit:  limit,
				Offset: offset,
			}
			if cmd.Flags().Changed("project") {
				opts.ProjectID = &projectID
			}
			entries, err := app.Journal.Recent(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []journal.Entry{}
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().Uint64Var(&projectID, "project", 0, "Filter by project id")
	cmd.Flags().StringVar(&method, "method", "", "Filter by contract method")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (ok|failed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")

	return cmd
}
