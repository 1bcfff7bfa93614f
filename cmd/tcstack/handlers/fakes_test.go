package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/release"
	corev1 "k8s.io/api/core/v1"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/k8s"
	"github.com/imamik/tcstack/internal/postgres"
	"github.com/imamik/tcstack/internal/teamcity"
)

// calls records operations from every fake in order.
type calls struct {
	mu   sync.Mutex
	list []string
}

func (c *calls) add(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, fmt.Sprintf(format, args...))
}

func (c *calls) contains(call string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, got := range c.list {
		if got == call {
			return true
		}
	}
	return false
}

type fakeKube struct {
	calls      *calls
	versionErr error
}

func (f *fakeKube) EnsureNamespace(_ context.Context, name string, _ map[string]string) (k8s.ObjectRef, error) {
	f.calls.add("namespace %s", name)
	return k8s.ObjectRef{Kind: "Namespace", Name: name}, nil
}

func (f *fakeKube) DeleteNamespace(_ context.Context, name string) error {
	f.calls.add("delete namespace %s", name)
	return nil
}

func (f *fakeKube) ApplySecret(_ context.Context, s *corev1.Secret) (k8s.ObjectRef, error) {
	f.calls.add("secret %s/%s", s.Namespace, s.Name)
	return k8s.ObjectRef{Kind: "Secret", Namespace: s.Namespace, Name: s.Name}, nil
}

func (f *fakeKube) DeleteSecret(_ context.Context, namespace, name string) error {
	f.calls.add("delete secret %s/%s", namespace, name)
	return nil
}

func (f *fakeKube) ApplyConfigMap(_ context.Context, cm *corev1.ConfigMap) (k8s.ObjectRef, error) {
	f.calls.add("configmap %s/%s", cm.Namespace, cm.Name)
	return k8s.ObjectRef{Kind: "ConfigMap", Namespace: cm.Namespace, Name: cm.Name}, nil
}

func (f *fakeKube) DeleteConfigMap(_ context.Context, namespace, name string) error {
	f.calls.add("delete configmap %s/%s", namespace, name)
	return nil
}

func (f *fakeKube) ServiceAddress(_ context.Context, _, _ string, _ time.Duration) (string, error) {
	return "10.0.0.5", nil
}

func (f *fakeKube) ServerVersion(_ context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return "v1.30.2", nil
}

type fakeHelm struct {
	calls  *calls
	failOn string
}

func (f *fakeHelm) Apply(_ context.Context, spec helm.ReleaseSpec) (*release.Release, error) {
	key := spec.Namespace + "/" + spec.Name
	if key == f.failOn {
		return nil, errors.New("timed out waiting for the condition")
	}
	f.calls.add("release %s", key)
	return &release.Release{
		Name:      spec.Name,
		Namespace: spec.Namespace,
		Version:   1,
		Chart:     &chart.Chart{Metadata: &chart.Metadata{Name: spec.Name, Version: "1.0.0"}},
	}, nil
}

func (f *fakeHelm) Uninstall(_ context.Context, namespace, name string, _ time.Duration) error {
	f.calls.add("uninstall %s/%s", namespace, name)
	return nil
}

type fakeAdmin struct {
	calls *calls
}

func (f *fakeAdmin) EnsureRole(_ context.Context, name, _ string) (postgres.Role, error) {
	f.calls.add("role %s", name)
	return postgres.Role{Name: name, OID: 16384, Created: true}, nil
}

func (f *fakeAdmin) EnsureDatabase(_ context.Context, name string) (postgres.Database, error) {
	f.calls.add("database %s", name)
	return postgres.Database{Name: name, OID: 16385, Created: true}, nil
}

func (f *fakeAdmin) EnsureGrant(_ context.Context, role, database string) (postgres.Grant, error) {
	f.calls.add("grant %s@%s", role, database)
	return postgres.Grant{Role: role, Database: database, Privileges: postgres.AllPrivileges, Created: true}, nil
}

func (f *fakeAdmin) DropDatabase(_ context.Context, name string) error {
	f.calls.add("drop database %s", name)
	return nil
}

func (f *fakeAdmin) DropRole(_ context.Context, name string) error {
	f.calls.add("drop role %s", name)
	return nil
}

func (f *fakeAdmin) Close(_ context.Context) error { return nil }

// fakeCluster replaces every client factory for the duration of a test.
type fakeCluster struct {
	calls *calls
	kube  *fakeKube
	helm  *fakeHelm
}

func installFakeCluster(t *testing.T) *fakeCluster {
	t.Helper()

	origRead, origKube, origHelm := readKubeconfig, newKubeClient, newHelmClient
	origDialer, origStore, origEnv := newAdminDialer, newObjectStore, lookupEnv
	origWrite := writeMetrics
	t.Cleanup(func() {
		readKubeconfig, newKubeClient, newHelmClient = origRead, origKube, origHelm
		newAdminDialer, newObjectStore, lookupEnv = origDialer, origStore, origEnv
		writeMetrics = origWrite
	})

	c := &calls{}
	fc := &fakeCluster{
		calls: c,
		kube:  &fakeKube{calls: c},
		helm:  &fakeHelm{calls: c},
	}

	readKubeconfig = func(_, _ string) ([]byte, error) { return []byte("apiVersion: v1\nkind: Config\n"), nil }
	newKubeClient = func(_ []byte) (k8s.Client, error) { return fc.kube, nil }
	newHelmClient = func(_ []byte, _ logr.Logger) teamcity.ReleaseClient { return fc.helm }
	newAdminDialer = func(_ logr.Logger, _ config.PostgresConfig, _ *config.Timeouts) teamcity.AdminDialer {
		return teamcity.DialerFunc(func(_ context.Context, cfg postgres.ConnConfig) (teamcity.DatabaseAdmin, error) {
			c.add("dial %s:%d", cfg.Host, cfg.Port)
			return &fakeAdmin{calls: c}, nil
		})
	}
	lookupEnv = func(string) (string, bool) { return "", false }

	return fc
}

// writeTestConfig writes a stack with n instances whose state lives in the
// test's temp dir and returns the config path.
func writeTestConfig(t *testing.T, n int, proxy bool) string {
	t.Helper()
	dir := t.TempDir()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "name: ci\nstate:\n  backend: file\n  path: %s\ninstances:\n", filepath.Join(dir, "state.yaml"))
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&buf, "  - name: teamcity-%d\n", i)
	}
	fmt.Fprintf(&buf, "proxy:\n  enabled: %t\n", proxy)

	path := filepath.Join(dir, "tcstack.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

// captureOutput captures stdout during f.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = old
	return <-done
}
