package main

import (
	"fmt"

	"github.com/deploymenttheory/go-api-session-client/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the apiclient version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.GetAppName(), version.GetVersion())
			return err
		},
	}
}
