package supabase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend, err := New(Config{URL: server.URL, APIKey: "test-key", Bucket: "images"})
	require.NoError(t, err)
	return backend
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{APIKey: "k", Bucket: "b"})
	require.Error(t, err)
	_, err = New(Config{URL: "https://x.supabase.co", Bucket: "b"})
	require.Error(t, err)
	_, err = New(Config{URL: "https://x.supabase.co", APIKey: "k"})
	require.Error(t, err)
}

func TestUpload(t *testing.T) {
	var gotPath, gotUpsert, gotMime string
	var gotBody []byte
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		gotMime = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	err := backend.Upload(context.Background(), "prod_1_glow.png", "image/png", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/images/profile_images/prod_1_glow.png", gotPath)
	assert.Equal(t, "true", gotUpsert)
	assert.Equal(t, "image/png", gotMime)
	assert.Equal(t, "bytes", string(gotBody))
}

func TestUploadConflictIsSoftSuccess(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	err := backend.Upload(context.Background(), "prod_1_glow.png", "image/png", strings.NewReader("bytes"))
	require.NoError(t, err)
}

func TestUploadServerError(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := backend.Upload(context.Background(), "prod_1_glow.png", "image/png", strings.NewReader("bytes"))
	require.Error(t, err)
}

func TestDownload(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/object/images/profile_images/prod_1_glow.png", r.URL.Path)
		io.WriteString(w, "image bytes")
	})

	rc, err := backend.Download(context.Background(), "prod_1_glow.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestDeleteToleratesMissing(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})
	require.NoError(t, backend.Delete(context.Background(), "prod_1_gone.png"))
}

func TestPublicURLAndRefToKey(t *testing.T) {
	backend, err := New(Config{URL: "https://xyz.supabase.co/", APIKey: "k", Bucket: "images"})
	require.NoError(t, err)

	ref := backend.PublicURL("prod_1_glow.png")
	assert.Equal(t, "https://xyz.supabase.co/storage/v1/object/public/images/profile_images/prod_1_glow.png", ref)

	key, ok := backend.RefToKey(ref)
	require.True(t, ok)
	assert.Equal(t, "prod_1_glow.png", key)

	_, ok = backend.RefToKey("https://other.example.com/x.png")
	assert.False(t, ok)
	_, ok = backend.RefToKey("prod_1_glow.png")
	assert.False(t, ok)
}
