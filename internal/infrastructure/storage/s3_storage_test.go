package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records requests and answers like a minimal path-style S3 server
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string]string
	types    map[string]string
	requests []string
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)

		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.objects[r.URL.Path] = string(body)
			f.types[r.URL.Path] = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusOK)
		case http.MethodHead:
			if _, ok := f.objects[r.URL.Path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			delete(f.objects, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) object(path string) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[path], f.types[path]
}

func newTestStorage(t *testing.T, endpoint string) *S3ObjectStorage {
	t.Helper()
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:        endpoint,
		Bucket:          "shop",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return s
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.ErrorContains(t, err, "configuration is required")
	})
	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{})
		assert.ErrorContains(t, err, "bucket is required")
	})
	t.Run("half of a key pair", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "shop", AccessKeyID: "key"})
		assert.ErrorContains(t, err, "must be set together")
	})
	t.Run("defaults", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "shop", Endpoint: "minio:9000"})
		require.NoError(t, err)
		assert.Equal(t, "https://minio:9000", s.endpoint)
		assert.Equal(t, "us-east-1", s.region)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
		assert.Equal(t, "shop", s.Bucket())
	})
	t.Run("options", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "shop"}, WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_URL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{"public base url wins", config.StorageConfig{Bucket: "shop", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com/products/a.png"},
		{"path style endpoint", config.StorageConfig{Bucket: "shop", Endpoint: "http://minio:9000", UsePathStyle: true}, "http://minio:9000/shop/products/a.png"},
		{"virtual host endpoint", config.StorageConfig{Bucket: "shop", Endpoint: "https://s3.example.com"}, "https://shop.s3.example.com/products/a.png"},
		{"aws", config.StorageConfig{Bucket: "shop", Region: "eu-north-1"}, "https://shop.s3.eu-north-1.amazonaws.com/products/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3ObjectStorage(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.URL("products/a.png"))
		})
	}
}

func TestS3ObjectStorage_UploadExistsDelete(t *testing.T) {
	fake, srv := newFakeS3(t)
	s := newTestStorage(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "products/p1/img.png", []byte("png-bytes"), "image/png"))
	body, contentType := fake.object("/shop/products/p1/img.png")
	assert.Equal(t, "png-bytes", body)
	assert.Equal(t, "image/png", contentType)

	ok, err := s.Exists(ctx, "products/p1/img.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "products/p1/img.png"))
	ok, err = s.Exists(ctx, "products/p1/img.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s := newTestStorage(t, "http://localhost:9")
	ctx := context.Background()

	assert.Error(t, s.Upload(ctx, "", nil, "text/plain"))
	assert.Error(t, s.Delete(ctx, ""))
	_, err := s.Exists(ctx, "")
	assert.Error(t, err)
	_, _, err = s.GenerateDownloadURL(ctx, "", 0)
	assert.Error(t, err)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s := newTestStorage(t, "http://minio:9000")

	link, expires, err := s.GenerateDownloadURL(context.Background(), "invoices/ORD-1.pdf", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://minio:9000/shop/invoices/ORD-1.pdf?"))
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, time.Minute)
}
