package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/cmd/tcstack/handlers"
)

// Init returns the command for interactively creating a stack configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "tcstack.yaml")
//	--full, -f: Output full YAML with all options (default: minimal output)
func Init() *cobra.Command {
	var (
		outputPath string
		fullOutput bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a stack configuration",
		Long: `Interactively create a stack configuration file.

This command asks about:

  - The stack name
  - How many TeamCity instances to run and how to expose them
  - Whether PostgreSQL is deployed by tcstack or already exists
  - Whether to deploy the Nginx proxy
  - Where generated passwords are stored

Use --full to output every option with its default value.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, fullOutput)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "tcstack.yaml", "Output file path")
	cmd.Flags().BoolVarP(&fullOutput, "full", "f", false, "Output full YAML with all options")

	return cmd
}
