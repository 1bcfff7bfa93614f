package password

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_MissingFileReadsEmpty(t *testing.T) {
	t.Parallel()

	backend := NewFileBackend(filepath.Join(t.TempDir(), "missing", "state.yaml"))
	data, err := backend.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileBackend_WriteRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".tcstack", "state.yaml")
	backend := NewFileBackend(path)

	require.NoError(t, backend.Write(ctx, []byte("version: 1\n")))
	require.NoError(t, backend.Write(ctx, []byte("version: 1\npasswords: {}\n")))

	data, err := backend.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\npasswords: {}\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileBackend_StoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.yaml")

	value, err := NewStore(NewFileBackend(path)).GetOrGenerate(ctx, "admin", Policy{Length: 20})
	require.NoError(t, err)

	got, ok, err := NewStore(NewFileBackend(path)).Get(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, value, got)
}

type fakeObjectStore struct {
	objects       map[string][]byte
	bucketCreates int
	createErr     error
	getErr        error
}

func (f *fakeObjectStore) CreateBucket(_ context.Context, _ string) error {
	f.bucketCreates++
	return f.createErr
}

func (f *fakeObjectStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey"}
	}
	return data, nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, bucket, key string, data []byte) error {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[bucket+"/"+key] = data
	return nil
}

func TestS3Backend_MissingObjectReadsEmpty(t *testing.T) {
	t.Parallel()

	backend := NewS3Backend(&fakeObjectStore{}, "state", "tcstack/state.yaml")
	data, err := backend.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestS3Backend_ReadError(t *testing.T) {
	t.Parallel()

	backend := NewS3Backend(&fakeObjectStore{getErr: &smithy.GenericAPIError{Code: "AccessDenied"}}, "state", "key")
	_, err := backend.Read(context.Background())
	assert.Error(t, err)
}

func TestS3Backend_CreatesBucketOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	objects := &fakeObjectStore{}
	backend := NewS3Backend(objects, "state", "tcstack/state.yaml")

	require.NoError(t, backend.Write(ctx, []byte("a")))
	require.NoError(t, backend.Write(ctx, []byte("b")))
	assert.Equal(t, 1, objects.bucketCreates)

	data, err := backend.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestS3Backend_CreateBucketFailure(t *testing.T) {
	t.Parallel()
	objects := &fakeObjectStore{createErr: errors.New("forbidden")}
	backend := NewS3Backend(objects, "state", "key")

	require.Error(t, backend.Write(context.Background(), []byte("a")))
	assert.Empty(t, objects.objects)
}
