package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/ui/tui"
)

// RunOptions control how apply and destroy execute their graph.
type RunOptions struct {
	Kubeconfig      string
	Parallelism     int
	TUI             bool
	MetricsTextfile string
}

// Factory function variables for graph execution - can be replaced in tests.
var (
	executeGraph = provisioning.Execute
	runGraphTUI  = tui.RunGraphTUI
	writeMetrics = func(path string) error {
		return prometheus.WriteToTextfile(path, metrics.Registry)
	}
)

// runLogger returns the context and logger of a run. While the TUI owns the
// terminal every logger, including the ones clients take from ctx, is
// discarded.
func runLogger(ctx context.Context, stack string, tuiEnabled bool) (context.Context, logr.Logger) {
	if tuiEnabled {
		return logf.IntoContext(ctx, logr.Discard()), logr.Discard()
	}
	return ctx, logf.FromContext(ctx).WithValues("stack", stack)
}

// runGraph executes g with a TUI or with events logged to log.
func runGraph(ctx context.Context, mode, stack string, g *provisioning.Graph, opts RunOptions, log logr.Logger) (*provisioning.Result, error) {
	execOpts := provisioning.Options{Parallelism: opts.Parallelism}

	var result *provisioning.Result
	var err error
	if opts.TUI {
		err = runGraphTUI(ctx, mode, stack, g, func(ctx context.Context, obs provisioning.Observer) error {
			execOpts.Observer = obs
			var execErr error
			result, execErr = executeGraph(ctx, g, execOpts)
			return execErr
		})
	} else {
		execOpts.Observer = provisioning.NewLogObserver(log)
		result, err = executeGraph(ctx, g, execOpts)
	}

	if opts.MetricsTextfile != "" {
		if mErr := writeMetrics(opts.MetricsTextfile); mErr != nil {
			log.Error(mErr, "failed to write metrics", "path", opts.MetricsTextfile)
		}
	}

	if err != nil {
		return result, fmt.Errorf("%s failed: %w", mode, err)
	}
	return result, nil
}
