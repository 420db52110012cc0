package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signet/internal/platform/cache"
	"signet/internal/platform/kafka"
)

type recordedUpdate struct {
	versions []string
}

func (r *recordedUpdate) RecordUpdateAvailable(_ context.Context, newVersion string) {
	r.versions = append(r.versions, newVersion)
}

func releaseServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHandleStoresLatestAndRecordsUpdate(t *testing.T) {
	ctx := context.Background()
	server := releaseServer(t, `{"tag_name":"v99.0.0"}`, http.StatusOK)

	mem := cache.NewMemory()
	recorder := &recordedUpdate{}
	updater := NewUpdater(server.URL, mem, time.Hour, recorder, discard())

	require.NoError(t, updater.Handle(ctx, kafka.Task{Name: TaskVersionCheck}))

	stored, err := mem.Get(ctx, CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "99.0.0", stored)
	assert.Equal(t, []string{"99.0.0"}, recorder.versions)
}

func TestHandleSameVersionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	server := releaseServer(t, `{"tag_name":"v`+Version+`"}`, http.StatusOK)

	mem := cache.NewMemory()
	recorder := &recordedUpdate{}
	updater := NewUpdater(server.URL, mem, time.Hour, recorder, discard())

	require.NoError(t, updater.Handle(ctx, kafka.Task{}))

	stored, err := mem.Get(ctx, CacheKey)
	require.NoError(t, err)
	assert.Equal(t, Version, stored)
	assert.Empty(t, recorder.versions)
}

func TestHandleBadTagFails(t *testing.T) {
	server := releaseServer(t, `{"tag_name":"nightly"}`, http.StatusOK)

	mem := cache.NewMemory()
	updater := NewUpdater(server.URL, mem, time.Hour, &recordedUpdate{}, discard())

	err := updater.Handle(context.Background(), kafka.Task{})
	require.Error(t, err)

	_, err = mem.Get(context.Background(), CacheKey)
	assert.Error(t, err, "a failed check must not poison the cache")
}

func TestHandleUpstreamErrorFails(t *testing.T) {
	server := releaseServer(t, `rate limited`, http.StatusForbidden)

	updater := NewUpdater(server.URL, cache.NewMemory(), time.Hour, &recordedUpdate{}, discard())
	require.Error(t, updater.Handle(context.Background(), kafka.Task{}))
}
