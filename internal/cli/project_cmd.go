package cli

import (
	"fmt"
	"strconv"

	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Submit and inspect conservation projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectDetailsCmd(app),
		newProjectContributeCmd(app),
		newProjectMilestonesCmd(app),
		newProjectAttestCmd(app),
		newProjectImpactCmd(app),
	)

	return cmd
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var file string
	var validators []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var project conservation.ConservationProject
			if err := readYAML(file, &project); err != nil {
				return err
			}
			proposed := validators
			if len(proposed) == 0 {
				proposed = project.Validators
			}
			resp, err := app.Tracker.CreateProject(cmd.Context(), project, proposed)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Project YAML file")
	cmd.Flags().StringSliceVar(&validators, "validators", nil, "Proposed validator ids (overrides the file)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newProjectDetailsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "details <project-id>",
		Short: "Read a project's stored state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			details, err := app.Tracker.GetProjectDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), details)
		},
	}
}

func newProjectContributeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <project-id> <amount>",
		Short: "Contribute funds to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("%w: amount %q", conservation.ErrInvalidAmount, args[1])
			}
			resp, err := app.Tracker.Contribute(cmd.Context(), id, amount)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newProjectMilestonesCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "milestones <project-id>",
		Short: "Add milestones from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			var doc struct {
				Milestones []conservation.Milestone `yaml:"milestones"`
			}
			if err := readYAML(file, &doc); err != nil {
				return err
			}
			resp, err := app.Tracker.AddMilestones(cmd.Context(), id, doc.Milestones)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Milestones YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newProjectAttestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "attest <project-id> <metric-name> <validator-id>",
		Short: "Record a validator's approval of an impact metric",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			a, err := app.Attestations.Record(cmd.Context(), id, args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
}

func newProjectImpactCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "impact <project-id>",
		Short: "Validate and submit impact metrics from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			var doc struct {
				Metrics []conservation.ImpactMetric `yaml:"metrics"`
			}
			if err := readYAML(file, &doc); err != nil {
				return err
			}
			resp, err := app.Tracker.ValidateImpact(cmd.Context(), id, doc.Metrics)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Metrics YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseProjectID(raw string) (conservation.ProjectID, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: project id %q", conservation.ErrInvalidInput, raw)
	}
	return conservation.ProjectID(id), nil
}
