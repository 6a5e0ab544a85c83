package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "regctl",
	Short: "Walk the capabilities of a grid registration API",
	Long: `regctl talks to the registration API of a grid. It asks the bootstrap
endpoint for the capability URLs granted to an account and then walks them:
error codes, available last names, a name check and account creation.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed requests)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "regctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newWalkCmd())
	rootCmd.AddCommand(newServeMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default layers ~/.config/regctl/config.yaml and ./.regctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

var (
	configPath string
	debug      bool
)
