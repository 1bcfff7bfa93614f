package teamcity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/release"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/k8s"
	"github.com/imamik/tcstack/internal/password"
	"github.com/imamik/tcstack/internal/postgres"
)

// recorder collects calls from every fake in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) index(call string) int {
	for i, c := range r.list() {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeKube struct {
	rec         *recorder
	mu          sync.Mutex
	secrets     map[string]*corev1.Secret
	configMaps  map[string]*corev1.ConfigMap
	address     string
	addressErr  error
	applyErr    error
	addressHits int
}

func newFakeKube(rec *recorder) *fakeKube {
	return &fakeKube{
		rec:        rec,
		secrets:    map[string]*corev1.Secret{},
		configMaps: map[string]*corev1.ConfigMap{},
		address:    "10.0.0.5",
	}
}

func (f *fakeKube) EnsureNamespace(_ context.Context, name string, _ map[string]string) (k8s.ObjectRef, error) {
	f.rec.add("namespace %s", name)
	return k8s.ObjectRef{Kind: "Namespace", Name: name, UID: types.UID("uid-" + name)}, nil
}

func (f *fakeKube) DeleteNamespace(_ context.Context, name string) error {
	f.rec.add("delete namespace %s", name)
	return nil
}

func (f *fakeKube) ApplySecret(_ context.Context, s *corev1.Secret) (k8s.ObjectRef, error) {
	if f.applyErr != nil {
		return k8s.ObjectRef{}, f.applyErr
	}
	f.rec.add("secret %s/%s", s.Namespace, s.Name)
	f.mu.Lock()
	f.secrets[s.Namespace+"/"+s.Name] = s
	f.mu.Unlock()
	return k8s.ObjectRef{Kind: "Secret", Namespace: s.Namespace, Name: s.Name}, nil
}

func (f *fakeKube) DeleteSecret(_ context.Context, namespace, name string) error {
	f.rec.add("delete secret %s/%s", namespace, name)
	return nil
}

func (f *fakeKube) ApplyConfigMap(_ context.Context, cm *corev1.ConfigMap) (k8s.ObjectRef, error) {
	f.rec.add("configmap %s/%s", cm.Namespace, cm.Name)
	f.mu.Lock()
	f.configMaps[cm.Namespace+"/"+cm.Name] = cm
	f.mu.Unlock()
	return k8s.ObjectRef{Kind: "ConfigMap", Namespace: cm.Namespace, Name: cm.Name}, nil
}

func (f *fakeKube) DeleteConfigMap(_ context.Context, namespace, name string) error {
	f.rec.add("delete configmap %s/%s", namespace, name)
	return nil
}

func (f *fakeKube) ServiceAddress(_ context.Context, namespace, name string, _ time.Duration) (string, error) {
	f.mu.Lock()
	f.addressHits++
	f.mu.Unlock()
	f.rec.add("address %s/%s", namespace, name)
	return f.address, f.addressErr
}

func (f *fakeKube) secret(key string) *corev1.Secret {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secrets[key]
}

type fakeHelm struct {
	rec      *recorder
	mu       sync.Mutex
	specs    map[string]helm.ReleaseSpec
	failOn   string
	versions map[string]int
}

func newFakeHelm(rec *recorder) *fakeHelm {
	return &fakeHelm{rec: rec, specs: map[string]helm.ReleaseSpec{}, versions: map[string]int{}}
}

func (f *fakeHelm) Apply(_ context.Context, spec helm.ReleaseSpec) (*release.Release, error) {
	key := spec.Namespace + "/" + spec.Name
	if key == f.failOn {
		return nil, errors.New("release failed: timed out waiting for the condition")
	}
	f.rec.add("release %s", key)

	f.mu.Lock()
	f.specs[key] = spec
	f.versions[key]++
	version := f.versions[key]
	f.mu.Unlock()

	return &release.Release{
		Name:      spec.Name,
		Namespace: spec.Namespace,
		Version:   version,
		Chart:     &chart.Chart{Metadata: &chart.Metadata{Name: spec.Name, Version: "1.0.0"}},
	}, nil
}

func (f *fakeHelm) Uninstall(_ context.Context, namespace, name string, _ time.Duration) error {
	f.rec.add("uninstall %s/%s", namespace, name)
	return nil
}

func (f *fakeHelm) spec(key string) (helm.ReleaseSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.specs[key]
	return s, ok
}

type fakePasswords struct {
	rec    *recorder
	mu     sync.Mutex
	values map[string]string
}

func newFakePasswords(rec *recorder) *fakePasswords {
	return &fakePasswords{rec: rec, values: map[string]string{}}
}

func (f *fakePasswords) GetOrGenerate(_ context.Context, name string, policy password.Policy) (string, error) {
	f.rec.add("password %s", name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[name]; ok {
		return v, nil
	}
	v := fmt.Sprintf("pw-%s-%d", name, policy.Length)
	f.values[name] = v
	return v, nil
}

func (f *fakePasswords) Get(_ context.Context, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[name]
	return v, ok, nil
}

func (f *fakePasswords) Delete(_ context.Context, name string) error {
	f.rec.add("forget password %s", name)
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, name)
	return nil
}

type fakeAdmin struct {
	rec      *recorder
	grantErr error
}

func (a *fakeAdmin) EnsureRole(_ context.Context, name, pw string) (postgres.Role, error) {
	a.rec.add("role %s", name)
	return postgres.Role{Name: name, OID: 16384, Created: true}, nil
}

func (a *fakeAdmin) EnsureDatabase(_ context.Context, name string) (postgres.Database, error) {
	a.rec.add("database %s", name)
	return postgres.Database{Name: name, OID: 16385, Created: true}, nil
}

func (a *fakeAdmin) EnsureGrant(_ context.Context, role, database string) (postgres.Grant, error) {
	if a.grantErr != nil {
		return postgres.Grant{}, a.grantErr
	}
	a.rec.add("grant %s on %s", role, database)
	return postgres.Grant{Role: role, Database: database, Privileges: postgres.AllPrivileges, Created: true}, nil
}

func (a *fakeAdmin) DropDatabase(_ context.Context, name string) error {
	a.rec.add("drop database %s", name)
	return nil
}

func (a *fakeAdmin) DropRole(_ context.Context, name string) error {
	a.rec.add("drop role %s", name)
	return nil
}

func (a *fakeAdmin) Close(context.Context) error { return nil }

type fakeDialer struct {
	admin *fakeAdmin
	mu    sync.Mutex
	dials []postgres.ConnConfig
}

func (d *fakeDialer) Dial(_ context.Context, cfg postgres.ConnConfig) (DatabaseAdmin, error) {
	d.mu.Lock()
	d.dials = append(d.dials, cfg)
	d.mu.Unlock()
	return d.admin, nil
}

func (d *fakeDialer) configs() []postgres.ConnConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]postgres.ConnConfig(nil), d.dials...)
}

type testEnv struct {
	rec       *recorder
	kube      *fakeKube
	helm      *fakeHelm
	passwords *fakePasswords
	admin     *fakeAdmin
	dialer    *fakeDialer
	env       map[string]string
}

func newTestEnv() *testEnv {
	rec := &recorder{}
	admin := &fakeAdmin{rec: rec}
	return &testEnv{
		rec:       rec,
		kube:      newFakeKube(rec),
		helm:      newFakeHelm(rec),
		passwords: newFakePasswords(rec),
		admin:     admin,
		dialer:    &fakeDialer{admin: admin},
		env:       map[string]string{},
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		Kube:      e.kube,
		Helm:      e.helm,
		Passwords: e.passwords,
		Postgres:  e.dialer,
		Timeouts: &config.Timeouts{
			Release:         time.Minute,
			PostgresRelease: time.Minute,
			Uninstall:       time.Minute,
			ServiceAddress:  time.Second,
		},
		LookupEnv: func(k string) (string, bool) {
			v, ok := e.env[k]
			return v, ok
		},
		ReadFile: func(path string) ([]byte, error) {
			return nil, fmt.Errorf("open %s: no such file or directory", path)
		},
	}
}

func testConfig(instances ...string) *config.Config {
	cfg := &config.Config{Name: "ci"}
	for _, name := range instances {
		cfg.Instances = append(cfg.Instances, config.InstanceConfig{Name: name})
	}
	cfg.ApplyDefaults()
	return cfg
}
