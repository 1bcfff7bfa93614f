package teamcity

import (
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/util/labels"
	"github.com/imamik/tcstack/internal/util/naming"
)

// Masked replaces every secret value in a rendering.
const Masked = "********"

// Rendering is the static view of a fleet: every Kubernetes object the
// fleet applies directly and every Helm release it installs.
type Rendering struct {
	Objects  []runtime.Object
	Releases []helm.ReleaseSpec
}

// Render builds the fleet's objects and release specs without touching the
// cluster. Secret values are masked. A LoadBalancer address is only known
// after apply, so the PostgreSQL host falls back to the service's cluster
// DNS name.
func (f *Fleet) Render() (*Rendering, error) {
	if _, err := f.Graph(); err != nil {
		return nil, err
	}

	r := &Rendering{}
	p := f.cfg.Postgres

	host, port := p.Host, p.Port
	if p.IsManaged() {
		pgLabels := f.labels(labels.ComponentPostgres, "")
		r.Objects = append(r.Objects,
			namespaceObject(p.Namespace, pgLabels),
			adminSecret(p.Namespace, Masked, pgLabels),
		)
		r.Releases = append(r.Releases, f.postgresRelease())
		port = p.Service.Port
		if host == "" {
			host = naming.ServiceHost(p.ReleaseName, p.Namespace)
		}
	}

	for _, inst := range f.cfg.Instances {
		ns := naming.Namespace(inst.Name)
		lbls := f.labels(labels.ComponentTeamCity, inst.Name)
		props := ConnectionProperties{
			Host:     host,
			Port:     port,
			Database: naming.Database(inst.Name),
			User:     naming.Role(inst.Name),
			Password: Masked,
		}
		r.Objects = append(r.Objects,
			namespaceObject(ns, lbls),
			dbPropertiesSecret(ns, props, lbls),
		)
		r.Releases = append(r.Releases, f.serverRelease(inst))
	}

	if f.cfg.Proxy.Enabled {
		px := f.cfg.Proxy
		upstreams := make([]Upstream, 0, len(f.cfg.Instances))
		for _, inst := range f.cfg.Instances {
			upstreams = append(upstreams, Upstream{
				Name: naming.Release(inst.Name),
				Host: naming.ServiceHost(naming.Release(inst.Name), naming.Namespace(inst.Name)),
				Port: inst.ServicePort,
			})
		}
		block, err := RenderServerBlock(px.Port, upstreams)
		if err != nil {
			return nil, err
		}
		lbls := f.labels(labels.ComponentProxy, "")
		r.Objects = append(r.Objects,
			namespaceObject(px.Namespace, lbls),
			proxyConfigMap(px.Namespace, block, lbls),
		)
		r.Releases = append(r.Releases, f.proxyRelease())
	}

	return r, nil
}
