package teamcity

import (
	"context"
	"strconv"

	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/util/labels"
	"github.com/imamik/tcstack/internal/util/naming"
)

func (f *Fleet) proxyRelease() helm.ReleaseSpec {
	px := f.cfg.Proxy
	return helm.ReleaseSpec{
		Namespace: px.Namespace,
		Name:      px.ReleaseName,
		Chart:     chartRef(px.Chart),
		Values:    ProxyValues(px),
		Timeout:   f.deps.Timeouts.Release,
	}
}

// proxySteps builds the proxy composite. Its config map consumes every
// server release, so the server block is rendered from their handles.
func (f *Fleet) proxySteps() []step {
	px := f.cfg.Proxy
	lbls := f.labels(labels.ComponentProxy, "")
	ns := f.namespaceStep(px.Namespace, lbls, false)
	cmID := naming.NodeID(string(provisioning.KindConfigMap), px.Namespace, naming.ProxyServerConfigMap)

	releases := make([]string, 0, len(f.cfg.Instances))
	for _, inst := range f.cfg.Instances {
		releases = append(releases, IDsFor(inst.Name).Release)
	}

	cm := step{
		node: provisioning.Node{
			ID:          cmID,
			Kind:        provisioning.KindConfigMap,
			Description: "apply proxy server block",
			DependsOn:   append([]string{ns.node.ID}, releases...),
			Run: func(ctx context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
				upstreams := make([]Upstream, 0, len(releases))
				for _, id := range releases {
					u, err := upstreamFromRelease(in, id)
					if err != nil {
						return provisioning.Handle{}, err
					}
					upstreams = append(upstreams, u)
				}
				block, err := RenderServerBlock(px.Port, upstreams)
				if err != nil {
					return provisioning.Handle{}, err
				}
				ref, err := f.deps.Kube.ApplyConfigMap(ctx, proxyConfigMap(px.Namespace, block, lbls))
				if err != nil {
					return provisioning.Handle{}, err
				}
				return provisioning.Handle{
					ID:      ref.ID(),
					Outputs: map[string]string{OutName: naming.ProxyServerConfigMap, OutNamespace: px.Namespace},
				}, nil
			},
		},
		teardown: func(bool) provisioning.RunFunc {
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				return provisioning.Handle{ID: cmID}, f.deps.Kube.DeleteConfigMap(ctx, px.Namespace, naming.ProxyServerConfigMap)
			}
		},
	}

	rel := f.releaseStep(f.proxyRelease(), []string{ns.node.ID, cmID}, nil)
	return []step{ns, cm, rel}
}

func upstreamFromRelease(in provisioning.Inputs, id string) (Upstream, error) {
	name, err := in.Output(id, OutName)
	if err != nil {
		return Upstream{}, err
	}
	ns, err := in.Output(id, OutNamespace)
	if err != nil {
		return Upstream{}, err
	}
	portStr, err := in.Output(id, OutPort)
	if err != nil {
		return Upstream{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Upstream{}, err
	}
	return Upstream{Name: name, Host: naming.ServiceHost(name, ns), Port: port}, nil
}
