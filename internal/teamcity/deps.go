package teamcity

import (
	"context"
	"os"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/release"
	corev1 "k8s.io/api/core/v1"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/k8s"
	"github.com/imamik/tcstack/internal/password"
	"github.com/imamik/tcstack/internal/postgres"
)

// KubeClient is the subset of k8s.Client the fleet uses.
type KubeClient interface {
	EnsureNamespace(ctx context.Context, name string, labels map[string]string) (k8s.ObjectRef, error)
	DeleteNamespace(ctx context.Context, name string) error
	ApplySecret(ctx context.Context, secret *corev1.Secret) (k8s.ObjectRef, error)
	DeleteSecret(ctx context.Context, namespace, name string) error
	ApplyConfigMap(ctx context.Context, cm *corev1.ConfigMap) (k8s.ObjectRef, error)
	DeleteConfigMap(ctx context.Context, namespace, name string) error
	ServiceAddress(ctx context.Context, namespace, name string, timeout time.Duration) (string, error)
}

// ReleaseClient installs and removes Helm releases.
type ReleaseClient interface {
	Apply(ctx context.Context, spec helm.ReleaseSpec) (*release.Release, error)
	Uninstall(ctx context.Context, namespace, name string, timeout time.Duration) error
}

// PasswordStore keeps generated passwords across runs.
type PasswordStore interface {
	GetOrGenerate(ctx context.Context, name string, policy password.Policy) (string, error)
	Get(ctx context.Context, name string) (string, bool, error)
	Delete(ctx context.Context, name string) error
}

// DatabaseAdmin manages roles and databases over an admin connection.
type DatabaseAdmin interface {
	EnsureRole(ctx context.Context, name, password string) (postgres.Role, error)
	EnsureDatabase(ctx context.Context, name string) (postgres.Database, error)
	EnsureGrant(ctx context.Context, role, database string) (postgres.Grant, error)
	DropDatabase(ctx context.Context, name string) error
	DropRole(ctx context.Context, name string) error
	Close(ctx context.Context) error
}

// AdminDialer opens admin connections to PostgreSQL.
type AdminDialer interface {
	Dial(ctx context.Context, cfg postgres.ConnConfig) (DatabaseAdmin, error)
}

// DialerFunc adapts a function to AdminDialer.
type DialerFunc func(ctx context.Context, cfg postgres.ConnConfig) (DatabaseAdmin, error)

// Dial implements AdminDialer.
func (f DialerFunc) Dial(ctx context.Context, cfg postgres.ConnConfig) (DatabaseAdmin, error) {
	return f(ctx, cfg)
}

// PostgresDialer returns an AdminDialer backed by d.
func PostgresDialer(d *postgres.Dialer) AdminDialer {
	return DialerFunc(func(ctx context.Context, cfg postgres.ConnConfig) (DatabaseAdmin, error) {
		admin, err := d.Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return admin, nil
	})
}

// Deps are the clients a fleet's nodes call.
type Deps struct {
	Kube      KubeClient
	Helm      ReleaseClient
	Passwords PasswordStore
	Postgres  AdminDialer
	Timeouts  *config.Timeouts
	Log       logr.Logger

	// LookupEnv and ReadFile default to the os package.
	LookupEnv func(string) (string, bool)
	ReadFile  func(string) ([]byte, error)
}

func (d *Deps) setDefaults() {
	if d.Timeouts == nil {
		d.Timeouts = config.LoadTimeouts()
	}
	if d.LookupEnv == nil {
		d.LookupEnv = os.LookupEnv
	}
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
}
