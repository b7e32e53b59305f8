package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/folio/internal/source"
)

func TestHTTPSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSnapshot))
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(source.HTTPConfig{URL: srv.URL + "/data.json"})
	require.NoError(t, err)

	snap, err := source.LoadSnapshot(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, snap.Projects, 1)
	assert.Equal(t, "closed", src.State())
}

func TestHTTPSource_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(source.HTTPConfig{URL: srv.URL})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSource_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(source.HTTPConfig{
		URL:         srv.URL,
		MaxFailures: 2,
		OpenTimeout: time.Minute,
	})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := src.Load(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, source.ErrCircuitOpen)
	}

	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, source.ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load(), "open circuit must not reach the server")
	assert.Equal(t, "open", src.State())
}

func TestHTTPSource_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(source.HTTPConfig{URL: srv.URL, RatePerSec: 0.001})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	require.NoError(t, err, "first request uses the burst token")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = src.Load(ctx)
	assert.Error(t, err, "second request would wait far beyond the deadline")
}

func TestNewHTTPSource_RequiresURL(t *testing.T) {
	_, err := source.NewHTTPSource(source.HTTPConfig{})
	assert.Error(t, err)
}

func TestHTTPSource_DocumentTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleSnapshot))
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(source.HTTPConfig{URL: srv.URL, MaxBytes: 16})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, source.ErrTooLarge)

	exact, err := source.NewHTTPSource(source.HTTPConfig{URL: srv.URL, MaxBytes: int64(len(sampleSnapshot))})
	require.NoError(t, err)
	data, err := exact.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot, string(data))
}
