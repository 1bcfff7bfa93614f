package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/imamik/tcstack/cmd/tcstack/handlers"
	"github.com/imamik/tcstack/internal/logging"
	"github.com/imamik/tcstack/internal/provisioning"
)

// addConfigFlag binds --config/-c.
func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", "", "Path to configuration file (default: tcstack.yaml)")
}

// addRunFlags binds the flags shared by apply and destroy.
func addRunFlags(cmd *cobra.Command, opts *handlers.RunOptions) {
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: $KUBECONFIG or ~/.kube/config)")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", provisioning.DefaultParallelism, "Maximum number of nodes run at once")
	cmd.Flags().BoolVar(&opts.TUI, "tui", logging.IsTerminal(os.Stdout), "Show an interactive progress view")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")
}
