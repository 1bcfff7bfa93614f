package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/teamcity"
)

// Plan handles the plan command.
//
// It validates the configuration and prints the stages of the apply graph,
// or of the destroy graph when destroy is set. The cluster is never
// contacted.
func Plan(_ context.Context, configPath string, destroy, purge bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	fleet := teamcity.NewFleet(cfg, teamcity.Deps{})

	mode := "apply"
	var g *provisioning.Graph
	if destroy {
		mode = "destroy"
		g, err = fleet.DestroyGraph(purge)
	} else {
		g, err = fleet.Graph()
	}
	if err != nil {
		return err
	}

	levels, err := g.Levels()
	if err != nil {
		return err
	}

	fmt.Print(renderPlan(mode, cfg.Name, g, levels))
	return nil
}
