package teamcity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"helm.sh/helm/v3/pkg/release"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/password"
	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/util/labels"
	"github.com/imamik/tcstack/internal/util/naming"
)

// Handle output and secret keys.
const (
	OutName      = "name"
	OutNamespace = "namespace"
	OutRevision  = "revision"
	OutChart     = "chart"
	OutHost      = "host"
	OutPort      = "port"
	OutAdminHost = "admin_host"
	OutOID       = "oid"
	OutCreated   = "created"
	OutRole      = "role"
	OutDatabase  = "database"
	OutPrivs     = "privileges"
	SecretValue  = "value"
)

// EndpointID is the node that resolves where PostgreSQL listens.
var EndpointID = naming.NodeID(string(provisioning.KindEndpoint), "postgresql")

// AdminPasswordID is the node that resolves the PostgreSQL admin password.
var AdminPasswordID = naming.NodeID(string(provisioning.KindPassword), naming.AdminPasswordKey)

// teardown returns the run function of a node in the destroy graph, or nil
// for a no-op.
type teardown func(purge bool) provisioning.RunFunc

type step struct {
	node     provisioning.Node
	teardown teardown
}

// Endpoint is where PostgreSQL accepts connections. AdminHost is the
// address the admin connection dials, which differs from Host when the
// server is reached through a port-forward.
type Endpoint struct {
	Host      string
	Port      int
	AdminHost string
}

// Fleet builds the provisioning graphs of one stack.
type Fleet struct {
	cfg  *config.Config
	deps Deps

	mu       sync.Mutex
	endpoint *Endpoint
}

// NewFleet returns a fleet for cfg, which must have defaults applied and
// be valid.
func NewFleet(cfg *config.Config, deps Deps) *Fleet {
	deps.setDefaults()
	return &Fleet{cfg: cfg, deps: deps}
}

// Config returns the fleet's configuration.
func (f *Fleet) Config() *config.Config {
	return f.cfg
}

func (f *Fleet) steps() []step {
	steps := f.postgresSteps()
	for _, inst := range f.cfg.Instances {
		steps = append(steps, f.instanceSteps(inst)...)
	}
	if f.cfg.Proxy.Enabled {
		steps = append(steps, f.proxySteps()...)
	}
	return steps
}

// Graph returns the apply graph: the PostgreSQL composite, one TeamCity
// composite per instance and the proxy composite when enabled.
func (f *Fleet) Graph() (*provisioning.Graph, error) {
	g := provisioning.NewGraph()
	for _, s := range f.steps() {
		if err := g.Add(s.node); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// DestroyGraph returns the apply graph reversed: consumers are removed
// before what they consume. Releases are uninstalled and secrets and config
// maps deleted. Namespaces holding persistent volume claims are kept. With
// purge, databases and roles are dropped, stored passwords forgotten and
// every namespace deleted.
func (f *Fleet) DestroyGraph(purge bool) (*provisioning.Graph, error) {
	g, err := f.Graph()
	if err != nil {
		return nil, err
	}

	teardowns := make(map[string]teardown)
	for _, s := range f.steps() {
		teardowns[s.node.ID] = s.teardown
	}

	return g.Reverse(func(n provisioning.Node) provisioning.RunFunc {
		td := teardowns[n.ID]
		if td == nil {
			return nil
		}
		return td(purge)
	}), nil
}

func (f *Fleet) labels(component, instance string) map[string]string {
	return labels.NewLabelBuilder(f.cfg.Name).
		WithComponent(component).
		WithInstance(instance).
		Build()
}

// namespaceStep ensures a namespace. A namespace that holds data volumes
// is only deleted on purge, since deleting it deletes its claims.
func (f *Fleet) namespaceStep(name string, lbls map[string]string, holdsData bool) step {
	return step{
		node: provisioning.Node{
			ID:          naming.NodeID(string(provisioning.KindNamespace), name),
			Kind:        provisioning.KindNamespace,
			Description: "ensure namespace " + name,
			Run: func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				ref, err := f.deps.Kube.EnsureNamespace(ctx, name, lbls)
				if err != nil {
					return provisioning.Handle{}, err
				}
				return provisioning.Handle{
					ID:      ref.ID(),
					Outputs: map[string]string{OutName: name},
				}, nil
			},
		},
		teardown: func(purge bool) provisioning.RunFunc {
			if holdsData && !purge {
				return nil
			}
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				return provisioning.Handle{ID: name}, f.deps.Kube.DeleteNamespace(ctx, name)
			}
		},
	}
}

// storedPasswordStep resolves a generated password by its logical name.
func (f *Fleet) storedPasswordStep(name string, policy config.PasswordPolicy) step {
	return step{
		node: provisioning.Node{
			ID:          naming.NodeID(string(provisioning.KindPassword), name),
			Kind:        provisioning.KindPassword,
			Description: "resolve password " + name,
			Run: func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				value, err := f.deps.Passwords.GetOrGenerate(ctx, name, password.Policy{
					Length:  policy.Length,
					Special: policy.Special,
				})
				if err != nil {
					return provisioning.Handle{}, fmt.Errorf("failed to resolve password %s: %w", name, err)
				}
				return passwordHandle(name, value), nil
			},
		},
		teardown: func(purge bool) provisioning.RunFunc {
			if !purge {
				return nil
			}
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				return provisioning.Handle{ID: name}, f.deps.Passwords.Delete(ctx, name)
			}
		},
	}
}

func passwordHandle(name, value string) provisioning.Handle {
	return provisioning.Handle{
		ID:      name,
		Outputs: map[string]string{OutName: name},
		Secrets: map[string]string{SecretValue: value},
	}
}

// releaseStep applies a Helm release. extra outputs are added to the
// release handle.
func (f *Fleet) releaseStep(spec helm.ReleaseSpec, dependsOn []string, extra map[string]string) step {
	return step{
		node: provisioning.Node{
			ID:          naming.NodeID(string(provisioning.KindRelease), spec.Namespace, spec.Name),
			Kind:        provisioning.KindRelease,
			Description: fmt.Sprintf("apply release %s/%s (%s)", spec.Namespace, spec.Name, spec.Chart),
			DependsOn:   dependsOn,
			Run: func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				rel, err := f.deps.Helm.Apply(ctx, spec)
				if err != nil {
					return provisioning.Handle{}, err
				}
				return releaseHandle(rel, extra), nil
			},
		},
		teardown: func(bool) provisioning.RunFunc {
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				err := f.deps.Helm.Uninstall(ctx, spec.Namespace, spec.Name, f.deps.Timeouts.Uninstall)
				return provisioning.Handle{ID: spec.Namespace + "/" + spec.Name}, err
			}
		},
	}
}

func releaseHandle(rel *release.Release, extra map[string]string) provisioning.Handle {
	outputs := map[string]string{
		OutName:      rel.Name,
		OutNamespace: rel.Namespace,
		OutRevision:  strconv.Itoa(rel.Version),
	}
	if rel.Chart != nil && rel.Chart.Metadata != nil {
		outputs[OutChart] = rel.Chart.Metadata.Name + "-" + rel.Chart.Metadata.Version
	}
	for k, v := range extra {
		outputs[k] = v
	}
	return provisioning.Handle{ID: helm.ReleaseID(rel), Outputs: outputs}
}

// externalAdminPassword reads the admin password of an unmanaged server
// from the environment or from the configured file.
func (f *Fleet) externalAdminPassword() (string, error) {
	if v, ok := f.deps.LookupEnv(config.EnvAdminPassword); ok && v != "" {
		return v, nil
	}
	path := f.cfg.Postgres.AdminPasswordFile
	if path == "" {
		return "", fmt.Errorf("postgresql admin password not set: export %s or set postgres.admin_password_file",
			config.EnvAdminPassword)
	}
	data, err := f.deps.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read admin password file: %w", err)
	}
	pw := strings.TrimSpace(string(data))
	if pw == "" {
		return "", fmt.Errorf("admin password file %s is empty", path)
	}
	return pw, nil
}
