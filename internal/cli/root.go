package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rpggio/canopy/internal/mcp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// App holds references to all services used by CLI commands.
type App struct {
	Tracker      mcp.ProjectTracker
	Validators   mcp.ValidatorService
	Attestations mcp.AttestationService
	Journal      mcp.JournalService

	// Serve runs the MCP server until ctx is done.
	Serve func(ctx context.Context) error
}

// NewRootCmd creates the top-level "canopy" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "canopy",
		Short:         "Conservation project tracker for the contract gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newValidatorCmd(app),
		newProjectCmd(app),
		newSubmissionsCmd(app),
	)

	return root
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (transport from config)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("serve is not configured")
			}
			return app.Serve(cmd.Context())
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
