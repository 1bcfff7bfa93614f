package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "eu-central",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:   &http.Client{Transport: &http.Transport{}},
	})

	return &Client{s3: client, region: "eu-central"}
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func errorBody(code string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>%s</Code>
  <Message>%s</Message>
</Error>`, code, code)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), Options{
		Endpoint:  "https://s3.example.com",
		Region:    "eu-central",
		AccessKey: "key",
		SecretKey: "secret",
		PathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-central", client.region)
}

func TestPutObject_Success(t *testing.T) {
	t.Parallel()

	var (
		mu           sync.Mutex
		capturedKey  string
		capturedBody []byte
	)

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			capturedKey = r.URL.Path
			capturedBody = body
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	data := []byte("version: 1\n")
	require.NoError(t, client.PutObject(context.Background(), "state", "tcstack/state.yaml", data))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/state/tcstack/state.yaml", capturedKey)
	assert.True(t, bytes.Equal(data, capturedBody))
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusForbidden, errorBody("AccessDenied"))
	}))

	err := client.PutObject(context.Background(), "state", "key", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object key in bucket state")
	assert.False(t, IsNotFound(err))
}

func TestGetObject_Success(t *testing.T) {
	t.Parallel()
	expected := []byte("passwords: {}\n")

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(expected)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(expected)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	data, err := client.GetObject(context.Background(), "state", "key")
	require.NoError(t, err)
	assert.Equal(t, expected, data)
}

func TestGetObject_NoSuchKey(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusNotFound, errorBody("NoSuchKey"))
	}))

	_, err := client.GetObject(context.Background(), "state", "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestCreateBucket_AlreadyOwnedByYou(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusConflict, errorBody("BucketAlreadyOwnedByYou"))
	}))

	assert.NoError(t, client.CreateBucket(context.Background(), "state"))
}

func TestCreateBucket_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusForbidden, errorBody("AccessDenied"))
	}))

	err := client.CreateBucket(context.Background(), "state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create bucket state")
}

func TestBucketExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"exists", http.StatusOK, true},
		{"missing", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			exists, err := client.BucketExists(context.Background(), "state")
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestDeleteObject_Success(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		method string
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method = r.Method
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteObject(context.Background(), "state", "key"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodDelete, method)
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"typed no such key", &s3types.NoSuchKey{}, true},
		{"typed no such bucket", fmt.Errorf("wrapped: %w", &s3types.NoSuchBucket{}), true},
		{"api code 404", &smithy.GenericAPIError{Code: "404"}, true},
		{"api access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestIsBucketAlreadyOwnedByYou(t *testing.T) {
	t.Parallel()
	assert.False(t, isBucketAlreadyOwnedByYou(nil))
	assert.True(t, isBucketAlreadyOwnedByYou(&s3types.BucketAlreadyExists{}))
	assert.True(t, isBucketAlreadyOwnedByYou(&smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}))
}
