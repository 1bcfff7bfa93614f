package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/cmd/tcstack/handlers"
)

// Render returns the command that prints objects and Helm values as YAML.
func Render() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the Kubernetes objects and Helm values of a stack",
		Long: `Render prints every namespace, secret and config map tcstack applies
directly, followed by the values of each Helm release. Passwords are masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.Context(), configPath)
		},
	}

	addConfigFlag(cmd, &configPath)

	return cmd
}
