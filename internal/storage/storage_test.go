package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"vidtube/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingS3 struct {
	mu       sync.Mutex
	requests []string
	status   int
}

func (r *recordingS3) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.requests = append(r.requests, req.Method+" "+req.URL.Path)
	r.mu.Unlock()
	w.WriteHeader(r.status)
}

func newTestStore(t *testing.T, status int) (*S3Store, *recordingS3) {
	t.Helper()
	rec := &recordingS3{status: status}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), &config.Config{
		StorageBucket:    "media",
		StorageRegion:    "us-east-1",
		StorageEndpoint:  srv.URL,
		StorageAccessKey: "key",
		StorageSecretKey: "secret",
	})
	require.NoError(t, err)
	return store, rec
}

func TestS3Store_DeleteUsesPathStyle(t *testing.T) {
	store, rec := newTestStore(t, http.StatusNoContent)

	require.NoError(t, store.Delete(context.Background(), "/videos/abc.mp4"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.requests, 1)
	assert.Equal(t, "DELETE /media/videos/abc.mp4", rec.requests[0])
}

func TestS3Store_EmptyKeyIsNoop(t *testing.T) {
	store, rec := newTestStore(t, http.StatusNoContent)

	require.NoError(t, store.Delete(context.Background(), ""))
	assert.Empty(t, rec.requests)
}

func TestS3Store_DeleteFailure(t *testing.T) {
	store, _ := newTestStore(t, http.StatusForbidden)

	err := store.Delete(context.Background(), "thumbs/x.png")
	assert.Error(t, err)
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	store, err := New(context.Background(), &config.Config{StorageEnabled: false})
	require.NoError(t, err)
	assert.IsType(t, NoopStore{}, store)
	assert.NoError(t, store.Delete(context.Background(), "anything"))

	_, err = New(context.Background(), &config.Config{StorageEnabled: true})
	assert.Error(t, err)
}
