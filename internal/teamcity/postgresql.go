package teamcity

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/postgres"
	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/util/labels"
	"github.com/imamik/tcstack/internal/util/naming"
)

func (f *Fleet) postgresRelease() helm.ReleaseSpec {
	p := f.cfg.Postgres
	return helm.ReleaseSpec{
		Namespace: p.Namespace,
		Name:      p.ReleaseName,
		Chart:     chartRef(p.Chart),
		Values:    PostgresValues(p),
		Timeout:   f.deps.Timeouts.PostgresRelease,
	}
}

// postgresSteps builds the shared PostgreSQL composite. An external server
// contributes only the admin password and a static endpoint.
func (f *Fleet) postgresSteps() []step {
	p := f.cfg.Postgres
	if !p.IsManaged() {
		return []step{f.externalAdminPasswordStep(), f.endpointStep(nil)}
	}

	lbls := f.labels(labels.ComponentPostgres, "")
	ns := f.namespaceStep(p.Namespace, lbls, true)
	pw := f.storedPasswordStep(naming.AdminPasswordKey, p.AdminPassword)
	secretID := naming.NodeID(string(provisioning.KindSecret), p.Namespace, naming.AdminSecret)

	secret := step{
		node: provisioning.Node{
			ID:          secretID,
			Kind:        provisioning.KindSecret,
			Description: "apply postgresql admin secret",
			DependsOn:   []string{ns.node.ID, AdminPasswordID},
			Run: func(ctx context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
				value, err := in.Secret(AdminPasswordID, SecretValue)
				if err != nil {
					return provisioning.Handle{}, err
				}
				ref, err := f.deps.Kube.ApplySecret(ctx, adminSecret(p.Namespace, value, lbls))
				if err != nil {
					return provisioning.Handle{}, err
				}
				return provisioning.Handle{
					ID:      ref.ID(),
					Outputs: map[string]string{OutName: naming.AdminSecret, OutNamespace: p.Namespace},
				}, nil
			},
		},
		teardown: func(bool) provisioning.RunFunc {
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				return provisioning.Handle{ID: secretID}, f.deps.Kube.DeleteSecret(ctx, p.Namespace, naming.AdminSecret)
			}
		},
	}

	rel := f.releaseStep(f.postgresRelease(), []string{ns.node.ID, secretID}, nil)

	return []step{pw, ns, secret, rel, f.endpointStep([]string{rel.node.ID})}
}

func (f *Fleet) externalAdminPasswordStep() step {
	return step{
		node: provisioning.Node{
			ID:          AdminPasswordID,
			Kind:        provisioning.KindPassword,
			Description: "read external postgresql admin password",
			Run: func(context.Context, provisioning.Inputs) (provisioning.Handle, error) {
				value, err := f.externalAdminPassword()
				if err != nil {
					return provisioning.Handle{}, err
				}
				return passwordHandle(naming.AdminPasswordKey, value), nil
			},
		},
	}
}

func (f *Fleet) endpointStep(dependsOn []string) step {
	return step{
		node: provisioning.Node{
			ID:          EndpointID,
			Kind:        provisioning.KindEndpoint,
			Description: "resolve postgresql endpoint",
			DependsOn:   dependsOn,
			Run: func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				ep, err := f.resolveEndpoint(ctx)
				if err != nil {
					return provisioning.Handle{}, err
				}
				return endpointHandle(ep), nil
			},
		},
	}
}

func endpointHandle(ep Endpoint) provisioning.Handle {
	port := strconv.Itoa(ep.Port)
	return provisioning.Handle{
		ID: net.JoinHostPort(ep.Host, port),
		Outputs: map[string]string{
			OutHost:      ep.Host,
			OutPort:      port,
			OutAdminHost: ep.AdminHost,
		},
	}
}

// resolveEndpoint finds the PostgreSQL address: the configured host, else
// the LoadBalancer ingress of the chart's service, else its cluster DNS
// name. The result is cached for the fleet's lifetime.
func (f *Fleet) resolveEndpoint(ctx context.Context) (Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.endpoint != nil {
		return *f.endpoint, nil
	}

	p := f.cfg.Postgres
	ep := Endpoint{Port: p.Service.Port, AdminHost: p.AdminHost}
	if !p.IsManaged() {
		ep.Port = p.Port
	}

	switch {
	case p.Host != "":
		ep.Host = p.Host
	case p.Service.Type == config.ServiceTypeLoadBalancer:
		addr, err := f.deps.Kube.ServiceAddress(ctx, p.Namespace, p.ReleaseName, f.deps.Timeouts.ServiceAddress)
		if err != nil {
			return Endpoint{}, fmt.Errorf("failed to resolve postgresql address: %w", err)
		}
		ep.Host = addr
	default:
		ep.Host = naming.ServiceHost(p.ReleaseName, p.Namespace)
	}
	if ep.AdminHost == "" {
		ep.AdminHost = ep.Host
	}

	f.endpoint = &ep
	return ep, nil
}

func (f *Fleet) connConfig(ep Endpoint, adminPassword string) postgres.ConnConfig {
	p := f.cfg.Postgres
	return postgres.ConnConfig{
		Host:     ep.AdminHost,
		Port:     ep.Port,
		User:     p.AdminUser,
		Password: adminPassword,
		Database: "postgres",
		SSLMode:  p.SSLMode,
	}
}

// withAdmin dials an admin connection from the endpoint and admin password
// inputs, runs fn and closes the connection.
func (f *Fleet) withAdmin(ctx context.Context, in provisioning.Inputs, fn func(DatabaseAdmin) error) error {
	host, err := in.Output(EndpointID, OutAdminHost)
	if err != nil {
		return err
	}
	portStr, err := in.Output(EndpointID, OutPort)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid postgresql port %q: %w", portStr, err)
	}
	adminPassword, err := in.Secret(AdminPasswordID, SecretValue)
	if err != nil {
		return err
	}
	return f.dial(ctx, Endpoint{AdminHost: host, Port: port}, adminPassword, fn)
}

// withStoredAdmin is withAdmin for the destroy graph, where the endpoint
// and admin password are not inputs and are resolved directly.
func (f *Fleet) withStoredAdmin(ctx context.Context, fn func(DatabaseAdmin) error) error {
	ep, err := f.resolveEndpoint(ctx)
	if err != nil {
		return err
	}

	var adminPassword string
	if f.cfg.Postgres.IsManaged() {
		value, ok, err := f.deps.Passwords.Get(ctx, naming.AdminPasswordKey)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("postgresql admin password %s is not in the state store", naming.AdminPasswordKey)
		}
		adminPassword = value
	} else {
		adminPassword, err = f.externalAdminPassword()
		if err != nil {
			return err
		}
	}
	return f.dial(ctx, ep, adminPassword, fn)
}

func (f *Fleet) dial(ctx context.Context, ep Endpoint, adminPassword string, fn func(DatabaseAdmin) error) error {
	admin, err := f.deps.Postgres.Dial(ctx, f.connConfig(ep, adminPassword))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := admin.Close(ctx); cerr != nil {
			f.deps.Log.V(1).Info("failed to close admin connection", "error", cerr.Error())
		}
	}()
	return fn(admin)
}
