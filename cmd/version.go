package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of regctl",
		Long:  `All software has versions. This is regctl's.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "regctl version %s\n", versionString())
		},
	}
}

func versionString() string {
	if rootCmd.Version == "" {
		return "dev"
	}
	return rootCmd.Version
}
