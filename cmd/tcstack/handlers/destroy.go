package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/tcstack/internal/teamcity"
)

// DestroyOptions extend RunOptions for destroy.
type DestroyOptions struct {
	RunOptions
	// Purge drops databases and roles and forgets generated passwords.
	Purge bool
}

// Destroy handles the destroy command.
//
// It runs the reverse of the apply graph: releases are uninstalled before
// the secrets they use are deleted. Without purge, the namespaces holding
// volume claims, the databases, roles and stored passwords survive, and a
// later apply reconnects to the same data.
func Destroy(ctx context.Context, configPath string, opts DestroyOptions) error {
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
	g, err := fleet.DestroyGraph(opts.Purge)
	if err != nil {
		return err
	}

	log.Info("destroying stack", "nodes", g.Len(), "purge", opts.Purge)

	result, err := runGraph(ctx, "destroy", cfg.Name, g, opts.RunOptions, log)
	if err != nil {
		if result != nil {
			printFailures(result)
		}
		return err
	}

	fmt.Printf("Stack %s destroyed (%d nodes)\n", cfg.Name, len(result.Nodes))
	if !opts.Purge {
		fmt.Println("Data namespaces, databases, roles and stored passwords were kept. Use --purge to remove them.")
	}
	return nil
}
