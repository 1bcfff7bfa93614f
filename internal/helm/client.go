package helm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/registry"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/storage/driver"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	defaultTimeout = 10 * time.Minute
	maxHistory     = 10
)

// Client applies releases using in-memory kubeconfig.
type Client struct {
	mu      sync.Mutex
	configs map[string]*action.Configuration

	newActionConfig func(namespace string) (*action.Configuration, error)
	loadChart       func(ref ChartRef) (*chart.Chart, error)
}

// NewClient creates a Helm client from kubeconfig bytes. Helm's own debug
// output goes to logger at V(2).
func NewClient(kubeconfig []byte, logger logr.Logger) *Client {
	settings := cli.New()
	debug := func(format string, v ...interface{}) {
		logger.V(2).Info(fmt.Sprintf(format, v...))
	}

	return &Client{
		configs: make(map[string]*action.Configuration),
		newActionConfig: func(namespace string) (*action.Configuration, error) {
			actionConfig := new(action.Configuration)
			restGetter := NewInMemoryRESTClientGetter(kubeconfig, namespace)
			if err := actionConfig.Init(restGetter, namespace, "secret", debug); err != nil {
				return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
			}

			registryClient, err := registry.NewClient(
				registry.ClientOptDebug(false),
				registry.ClientOptWriter(io.Discard),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create registry client: %w", err)
			}
			actionConfig.RegistryClient = registryClient
			return actionConfig, nil
		},
		loadChart: func(ref ChartRef) (*chart.Chart, error) {
			return locateChart(ref, settings)
		},
	}
}

func (c *Client) actionConfig(namespace string) (*action.Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg, ok := c.configs[namespace]; ok {
		return cfg, nil
	}
	cfg, err := c.newActionConfig(namespace)
	if err != nil {
		return nil, err
	}
	c.configs[namespace] = cfg
	return cfg, nil
}

// Apply installs the release if it has no history and upgrades it
// otherwise. Both paths are atomic and wait for resources to become ready.
func (c *Client) Apply(ctx context.Context, spec ReleaseSpec) (*release.Release, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cfg, err := c.actionConfig(spec.Namespace)
	if err != nil {
		return nil, err
	}

	exists, err := releaseExists(cfg, spec.Name)
	if err != nil {
		return nil, err
	}

	chrt, err := c.loadChart(spec.Chart)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", spec.Chart, err)
	}

	timeout := spec.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	values := spec.Values.AsMap()

	logger := logf.FromContext(ctx).WithValues("namespace", spec.Namespace, "release", spec.Name)

	if !exists {
		logger.Info("installing release", "chart", spec.Chart.String())
		install := action.NewInstall(cfg)
		install.ReleaseName = spec.Name
		install.Namespace = spec.Namespace
		install.Version = spec.Chart.Version
		install.Atomic = true
		install.Wait = true
		install.Timeout = timeout

		rel, err := install.RunWithContext(ctx, chrt, values)
		if err != nil {
			return nil, fmt.Errorf("helm install of %s/%s failed: %w", spec.Namespace, spec.Name, err)
		}
		return rel, nil
	}

	logger.Info("upgrading release", "chart", spec.Chart.String())
	upgrade := action.NewUpgrade(cfg)
	upgrade.Namespace = spec.Namespace
	upgrade.Version = spec.Chart.Version
	upgrade.Atomic = true
	upgrade.CleanupOnFail = true
	upgrade.Wait = true
	upgrade.Timeout = timeout
	upgrade.MaxHistory = maxHistory
	upgrade.ReuseValues = false

	rel, err := upgrade.RunWithContext(ctx, spec.Name, chrt, values)
	if err != nil {
		return nil, fmt.Errorf("helm upgrade of %s/%s failed: %w", spec.Namespace, spec.Name, err)
	}
	return rel, nil
}

// Uninstall removes a release. A release that does not exist is not an error.
func (c *Client) Uninstall(ctx context.Context, namespace, name string, timeout time.Duration) error {
	cfg, err := c.actionConfig(namespace)
	if err != nil {
		return err
	}

	uninstall := action.NewUninstall(cfg)
	uninstall.Wait = true
	uninstall.IgnoreNotFound = true
	uninstall.Timeout = timeout

	if _, err := uninstall.Run(name); err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return nil
		}
		return fmt.Errorf("helm uninstall of %s/%s failed: %w", namespace, name, err)
	}

	logf.FromContext(ctx).Info("uninstalled release", "namespace", namespace, "release", name)
	return nil
}

// Exists reports whether the release has any recorded revision.
func (c *Client) Exists(namespace, name string) (bool, error) {
	cfg, err := c.actionConfig(namespace)
	if err != nil {
		return false, err
	}
	return releaseExists(cfg, name)
}

func releaseExists(cfg *action.Configuration, name string) (bool, error) {
	history := action.NewHistory(cfg)
	history.Max = 1

	_, err := history.Run(name)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read history of release %s: %w", name, err)
	}
	return true, nil
}
