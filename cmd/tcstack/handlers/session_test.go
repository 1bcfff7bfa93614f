package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/password"
	"github.com/imamik/tcstack/internal/platform/s3"
)

type nopObjectStore struct{}

func (nopObjectStore) CreateBucket(context.Context, string) error                { return nil }
func (nopObjectStore) GetObject(context.Context, string, string) ([]byte, error) { return nil, nil }
func (nopObjectStore) PutObject(context.Context, string, string, []byte) error   { return nil }

func TestNewStateBackend_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	backend, err := newStateBackend(context.Background(), config.StateConfig{Backend: config.StateBackendFile, Path: path})
	require.NoError(t, err)

	fb, ok := backend.(*password.FileBackend)
	require.True(t, ok)
	assert.Equal(t, path, fb.Path)
}

func TestNewStateBackend_S3(t *testing.T) {
	installFakeCluster(t)

	state := config.StateConfig{
		Backend: config.StateBackendS3,
		S3: config.S3StateConfig{
			Endpoint: "https://s3.example.com",
			Region:   "eu-central",
			Bucket:   "tcstack",
			Key:      config.DefaultStateKey,
		},
	}

	t.Run("missing credentials", func(t *testing.T) {
		_, err := newStateBackend(context.Background(), state)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.EnvS3AccessKey)
	})

	t.Run("credentials from environment", func(t *testing.T) {
		env := map[string]string{config.EnvS3AccessKey: "key", config.EnvS3SecretKey: "secret"}
		lookupEnv = func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}
		var got s3.Options
		newObjectStore = func(_ context.Context, opts s3.Options) (password.ObjectStore, error) {
			got = opts
			return nopObjectStore{}, nil
		}

		backend, err := newStateBackend(context.Background(), state)
		require.NoError(t, err)
		assert.IsType(t, &password.S3Backend{}, backend)
		assert.Equal(t, "key", got.AccessKey)
		assert.Equal(t, "https://s3.example.com", got.Endpoint)
		assert.True(t, got.PathStyle)
	})

	t.Run("client error", func(t *testing.T) {
		lookupEnv = func(string) (string, bool) { return "x", true }
		newObjectStore = func(context.Context, s3.Options) (password.ObjectStore, error) {
			return nil, errors.New("bad region")
		}
		_, err := newStateBackend(context.Background(), state)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create s3 client")
	})
}

func TestNewStateBackend_Unknown(t *testing.T) {
	_, err := newStateBackend(context.Background(), config.StateConfig{Backend: "etcd"})
	assert.Error(t, err)
}

func TestLoadConfig_FindsDefault(t *testing.T) {
	origFind := findConfigFile
	t.Cleanup(func() { findConfigFile = origFind })

	path := writeTestConfig(t, 1, false)
	findConfigFile = func() (string, error) { return path, nil }

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "ci", cfg.Name)
}

func TestLoadConfig_NotFound(t *testing.T) {
	origFind := findConfigFile
	t.Cleanup(func() { findConfigFile = origFind })

	findConfigFile = func() (string, error) { return "", errors.New("config file tcstack.yaml not found") }

	_, err := loadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcstack init")
}
