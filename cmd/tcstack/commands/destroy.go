package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/cmd/tcstack/handlers"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var (
		configPath string
		opts       handlers.DestroyOptions
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Remove the stack from the cluster",
		Long: `Destroy uninstalls every release and deletes the namespaces, secrets and
config maps of the stack, in the reverse order of apply.

Databases, roles and generated passwords are kept unless --purge is set.

WARNING: with --purge all TeamCity data is lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, opts)
		},
	}

	addConfigFlag(cmd, &configPath)
	addRunFlags(cmd, &opts.RunOptions)
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "Also drop databases and roles and forget passwords")

	return cmd
}
