package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/imamik/tcstack/internal/teamcity"
)

// renderOutput is where Render writes. Replaced in tests.
var renderOutput io.Writer = os.Stdout

// Render handles the render command.
//
// It prints the Kubernetes objects tcstack applies directly followed by the
// values of every Helm release, as a multi-document YAML stream. Secret
// values are masked.
func Render(_ context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	rendering, err := teamcity.NewFleet(cfg, teamcity.Deps{}).Render()
	if err != nil {
		return err
	}

	for _, obj := range rendering.Objects {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal object: %w", err)
		}
		fmt.Fprintf(renderOutput, "---\n%s", data)
	}

	for _, spec := range rendering.Releases {
		data, err := spec.Values.ToYAML()
		if err != nil {
			return fmt.Errorf("release %s: %w", spec.Namespace+"/"+spec.Name, err)
		}
		fmt.Fprintf(renderOutput, "---\n# release: %s\n# chart: %s\n%s",
			spec.Namespace+"/"+spec.Name, spec.Chart, data)
	}

	return nil
}
