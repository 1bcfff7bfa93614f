package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/cmd/tcstack/handlers"
)

// Plan returns the command that prints the execution stages of a stack.
func Plan() *cobra.Command {
	var (
		configPath string
		destroy    bool
		purge      bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the execution stages without touching the cluster",
		Long: `Plan validates the configuration and prints the dependency graph
grouped into stages. Nodes in the same stage run concurrently.

Examples:
  tcstack plan
  tcstack plan --destroy --purge`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath, destroy, purge)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&destroy, "destroy", false, "Show the destroy graph instead")
	cmd.Flags().BoolVar(&purge, "purge", false, "With --destroy, include dropping databases and roles")

	return cmd
}
