// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/internal/logging"
)

// Root returns the root command for the tcstack CLI.
//
// The root command installs the logger every subcommand reads from its
// context.
func Root() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "tcstack",
		Short:         "Provision TeamCity servers and PostgreSQL on Kubernetes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctx, _ := logging.Setup(cmd.Context(), logging.DefaultOptions(debug))
			cmd.SetContext(ctx)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(Init())
	cmd.AddCommand(Plan())
	cmd.AddCommand(Render())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Version())

	return cmd
}
