package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/k8s"
	"github.com/imamik/tcstack/internal/password"
	"github.com/imamik/tcstack/internal/platform/s3"
	"github.com/imamik/tcstack/internal/postgres"
	"github.com/imamik/tcstack/internal/teamcity"
	"github.com/imamik/tcstack/internal/util/async"
	"github.com/imamik/tcstack/internal/util/retry"
)

// Factory function variables for cluster clients - can be replaced in tests.
var (
	readKubeconfig = k8s.ReadKubeconfig
	newKubeClient  = k8s.NewFromKubeconfig
	newHelmClient  = func(kubeconfig []byte, log logr.Logger) teamcity.ReleaseClient {
		return helm.NewClient(kubeconfig, log)
	}
	newObjectStore = func(ctx context.Context, opts s3.Options) (password.ObjectStore, error) {
		return s3.NewClient(ctx, opts)
	}
	newAdminDialer = func(log logr.Logger, cfg config.PostgresConfig, t *config.Timeouts) teamcity.AdminDialer {
		d := postgres.NewDialer(log, cfg.PasswordEncryption == config.PasswordEncryptionSCRAM,
			retry.WithMaxRetries(t.RetryMaxAttempts),
			retry.WithInitialDelay(t.RetryInitialDelay),
			retry.WithOnRetry(func(attempt int, err error, next time.Duration) {
				log.V(1).Info("postgres not ready", "attempt", attempt, "retryIn", next.String(), "error", err.Error())
			}),
		)
		return teamcity.PostgresDialer(d)
	}
	lookupEnv = os.LookupEnv
)

// session holds the clients of one command run.
type session struct {
	kube  k8s.Client
	store *password.Store
	deps  teamcity.Deps
}

// newSession connects to the cluster named by the kubeconfig and opens the
// password state backend.
func newSession(ctx context.Context, cfg *config.Config, kubeconfigFlag string, log logr.Logger) (*session, error) {
	kubeconfig, err := readKubeconfig(kubeconfigFlag, cfg.Kubeconfig)
	if err != nil {
		return nil, err
	}

	kube, err := newKubeClient(kubeconfig)
	if err != nil {
		return nil, err
	}

	backend, err := newStateBackend(ctx, cfg.State)
	if err != nil {
		return nil, err
	}
	store := password.NewStore(backend)

	timeouts := config.LoadTimeouts()

	return &session{
		kube:  kube,
		store: store,
		deps: teamcity.Deps{
			Kube:      kube,
			Helm:      newHelmClient(kubeconfig, log.WithName("helm")),
			Passwords: store,
			Postgres:  newAdminDialer(log.WithName("postgres"), cfg.Postgres, timeouts),
			Timeouts:  timeouts,
			Log:       log,
			LookupEnv: lookupEnv,
		},
	}, nil
}

// newStateBackend returns the configured password state backend.
func newStateBackend(ctx context.Context, state config.StateConfig) (password.Backend, error) {
	switch state.Backend {
	case config.StateBackendFile:
		return password.NewFileBackend(state.Path), nil
	case config.StateBackendS3:
		accessKey, _ := lookupEnv(config.EnvS3AccessKey)
		secretKey, _ := lookupEnv(config.EnvS3SecretKey)
		if accessKey == "" || secretKey == "" {
			return nil, fmt.Errorf("%s and %s must be set for the s3 state backend",
				config.EnvS3AccessKey, config.EnvS3SecretKey)
		}
		store, err := newObjectStore(ctx, s3.Options{
			Endpoint:  state.S3.Endpoint,
			Region:    state.S3.Region,
			AccessKey: accessKey,
			SecretKey: secretKey,
			PathStyle: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return password.NewS3Backend(store, state.S3.Bucket, state.S3.Key), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", state.Backend)
	}
}

// preflight checks the cluster and the state backend concurrently before
// any node runs.
func (s *session) preflight(ctx context.Context, log logr.Logger) error {
	return async.RunParallel(ctx, []async.Task{
		{Name: "kubernetes", Func: func(ctx context.Context) error {
			v, err := s.kube.ServerVersion(ctx)
			if err != nil {
				return err
			}
			log.V(1).Info("kubernetes API server reachable", "version", v)
			return nil
		}},
		{Name: "state", Func: func(ctx context.Context) error {
			names, err := s.store.Names(ctx)
			if err != nil {
				return err
			}
			log.V(1).Info("state backend readable", "passwords", len(names))
			return nil
		}},
	})
}
