package cmd

import (
	"context"
	"errors"
	"fmt"

	"regctl/internal/app"
	"regctl/internal/color"
	"regctl/internal/regapi"
	"regctl/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

const walkUsage = `Please pass in your first name, last name, and password as arguments. For example:
regctl walk registration mackay 1234`

var (
	walkBootstrapURL string
	walkGroup        string
	walkInsecure     bool
	walkCopyAgentID  bool
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func newWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk <first-name> <last-name> <password>",
		Short: "Walk the registration capabilities granted to an account",
		Long: `Fetches the capability URLs granted to the account and walks them in order:

  1. get_error_codes  list the error codes of the API
  2. get_last_names   list the last names available for registration
  3. check_name       check a random username with the first last name
  4. create_user      create the account when the name is available
  5. add_to_group     add the new account to --group, when set

A step runs only when every previous step succeeded and its capability was
granted. Every request and response is echoed to stdout.`,
		Example: "  regctl walk registration mackay 1234",
		Args:    walkArgs,
		RunE:    runWalk,
	}

	cmd.Flags().StringVar(&walkBootstrapURL, "bootstrap-url", "", "URL handing out the capability URLs (overrides config)")
	cmd.Flags().StringVar(&walkGroup, "group", "", "Add the created account to this group")
	cmd.Flags().BoolVar(&walkInsecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&walkCopyAgentID, "copy-agent-id", false, "Copy the new agent id to the clipboard")
	return cmd
}

func walkArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(3)(cmd, args); err != nil {
		return errors.New(walkUsage)
	}
	return nil
}

func runWalk(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(debug, configPath)
	cfg.BootstrapURL = walkBootstrapURL
	cfg.GroupName = walkGroup
	cfg.Insecure = walkInsecure

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	color.Initialize(true)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	creds := regapi.Credentials{FirstName: args[0], LastName: args[1], Password: args[2]}

	res, err := application.Walk(ctx, cmd.OutOrStdout(), creds)
	if err != nil {
		return err
	}

	if walkCopyAgentID && res.Account != nil {
		if err := copyToClipboard(res.Account.AgentID.String()); err != nil {
			logging.Warn("CLI", "Could not copy agent id to clipboard: %v", err)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), color.MutedStyle.Render("Agent id copied to clipboard"))
		}
	}
	return nil
}
