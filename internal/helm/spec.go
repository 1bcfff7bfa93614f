package helm

import (
	"fmt"
	"time"

	"helm.sh/helm/v3/pkg/release"
)

// ChartRef locates a chart. Path takes precedence over Repository/Name.
type ChartRef struct {
	Repository string
	Name       string
	Path       string
	Version    string
}

func (r ChartRef) String() string {
	if r.Path != "" {
		return r.Path
	}
	return fmt.Sprintf("%s/%s@%s", r.Repository, r.Name, r.Version)
}

// ReleaseSpec is everything needed to install or upgrade one release.
type ReleaseSpec struct {
	Namespace string
	Name      string
	Chart     ChartRef
	Values    Values
	Timeout   time.Duration
}

// Validate checks that the spec identifies a release and a chart.
func (s ReleaseSpec) Validate() error {
	if s.Namespace == "" {
		return fmt.Errorf("release namespace is required")
	}
	if s.Name == "" {
		return fmt.Errorf("release name is required")
	}
	if s.Chart.Path == "" && (s.Chart.Repository == "" || s.Chart.Name == "") {
		return fmt.Errorf("release %s: chart path or repository and name are required", s.Name)
	}
	return nil
}

// ReleaseID returns the opaque identifier of a release revision,
// namespace/name.vN.
func ReleaseID(rel *release.Release) string {
	return fmt.Sprintf("%s/%s.v%d", rel.Namespace, rel.Name, rel.Version)
}
