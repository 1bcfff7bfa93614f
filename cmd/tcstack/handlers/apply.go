package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/tcstack/internal/teamcity"
)

// Apply handles the apply command.
//
// It loads the configuration, checks that the cluster and the state backend
// are reachable, then executes the fleet graph. Nodes already in their
// desired state are no-ops, so apply can be repeated.
func Apply(ctx context.Context, configPath string, opts RunOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, log := runLogger(ctx, cfg.Name, opts.TUI)

	s, err := newSession(ctx, cfg, opts.Kubeconfig, log)
	if err != nil {
		return err
	}
	if err := s.preflight(ctx, log); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}

	fleet := teamcity.NewFleet(cfg, s.deps)
	g, err := fleet.Graph()
	if err != nil {
		return err
	}

	log.Info("applying stack", "nodes", g.Len(), "instances", len(cfg.Instances))

	result, err := runGraph(ctx, "apply", cfg.Name, g, opts, log)
	if err != nil {
		if result != nil {
			printFailures(result)
		}
		return err
	}

	printApplySummary(cfg, result)
	return nil
}
