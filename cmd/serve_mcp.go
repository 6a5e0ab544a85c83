package cmd

import (
	"context"
	"fmt"

	"regctl/internal/app"

	"github.com/spf13/cobra"
)

func newServeMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the registration API as MCP tools on stdio",
		Long: `Starts an MCP server on stdin/stdout exposing one tool per registration
API call (reg_capabilities, reg_error_codes, reg_last_names, reg_check_name,
reg_create_user, reg_add_to_group) and reg_walk for the full walk.

Logs go to stderr so they never mix with the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: runServeMCP,
	}
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(app.NewConfig(debug, configPath))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.ServeMCP(ctx, versionString())
}
