package helm

import (
	"fmt"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
)

// locateChart loads a local chart directory or archive, or downloads the
// chart from its repository into Helm's cache.
func locateChart(ref ChartRef, settings *cli.EnvSettings) (*chart.Chart, error) {
	if ref.Path != "" {
		chrt, err := loader.Load(ref.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load chart from %s: %w", ref.Path, err)
		}
		return chrt, nil
	}

	cp := &action.ChartPathOptions{
		RepoURL: ref.Repository,
		Version: ref.Version,
	}
	chartPath, err := cp.LocateChart(ref.Name, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", ref.Name, ref.Repository, err)
	}

	return loader.Load(chartPath)
}
