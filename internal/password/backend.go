package password

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/tcstack/internal/platform/s3"
)

// Backend persists the serialized state document.
// Read returns nil data and no error when no state exists yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FileBackend keeps state in a local file.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", b.Path, err)
	}
	return data, nil
}

// Write replaces the file atomically via a temporary file in the same directory.
func (b *FileBackend) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set state file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, b.Path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", b.Path, err)
	}
	return nil
}

// ObjectStore is the subset of the S3 client the S3 backend needs.
type ObjectStore interface {
	CreateBucket(ctx context.Context, bucket string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// S3Backend keeps state in a single object.
type S3Backend struct {
	store  ObjectStore
	bucket string
	key    string

	bucketReady bool
}

// NewS3Backend returns a backend storing state at bucket/key.
func NewS3Backend(store ObjectStore, bucket, key string) *S3Backend {
	return &S3Backend{store: store, bucket: bucket, key: key}
}

func (b *S3Backend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.store.GetObject(ctx, b.bucket, b.key)
	if s3.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write creates the bucket on first use and uploads the state. Callers
// serialize writes.
func (b *S3Backend) Write(ctx context.Context, data []byte) error {
	if !b.bucketReady {
		if err := b.store.CreateBucket(ctx, b.bucket); err != nil {
			return err
		}
		b.bucketReady = true
	}
	return b.store.PutObject(ctx, b.bucket, b.key, data)
}
