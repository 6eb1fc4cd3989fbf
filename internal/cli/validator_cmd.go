package cli

import (
	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/spf13/cobra"
)

func newValidatorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validator",
		Short: "Manage the local validator registry",
	}

	cmd.AddCommand(
		newValidatorRegisterCmd(app),
		newValidatorListCmd(app),
	)

	return cmd
}

func newValidatorRegisterCmd(app *App) *cobra.Command {
	var name string
	var score int

	cmd := &cobra.Command{
		Use:   "register <id>",
		Short: "Register a validator or update its reputation score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.Validators.Register(cmd.Context(), registry.RegisterRequest{
				ID:              args[0],
				DisplayName:     name,
				ReputationScore: score,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().IntVar(&score, "score", 0, "Reputation score (0-100)")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newValidatorListCmd(app *App) *cobra.Command {
	var opts registry.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List validators, highest reputation first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Validators.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if list == nil {
				list = []registry.Validator{}
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().IntVar(&opts.MinReputation, "min", 0, "Minimum reputation score")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of validators")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Offset for pagination")

	return cmd
}
