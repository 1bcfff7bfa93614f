package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/cmd/tcstack/handlers"
)

// Apply returns the command that provisions a stack.
//
// Environment variables:
//
//	TCSTACK_POSTGRES_ADMIN_PASSWORD: admin password of an external server
//	TCSTACK_S3_ACCESS_KEY, TCSTACK_S3_SECRET_KEY: s3 state backend credentials
func Apply() *cobra.Command {
	var (
		configPath string
		opts       handlers.RunOptions
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the stack",
		Long: `Create or update PostgreSQL, the TeamCity servers and the optional proxy.

Every resource is a node in a dependency graph. Independent nodes run
concurrently; a failure cancels the run and skips everything that has not
started.

Examples:
  # Apply tcstack.yaml in the current directory
  tcstack apply

  # Apply a specific file with more concurrency
  tcstack apply -c production.yaml --parallelism 8`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath, opts)
		},
	}

	addConfigFlag(cmd, &configPath)
	addRunFlags(cmd, &opts)

	return cmd
}
