package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/folio/internal/source"
)

// fakeBucket serves path-style GetObject requests for a single bucket.
func fakeBucket(t *testing.T, bucket string, objects map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		key, ok := strings.CutPrefix(r.URL.Path, "/"+bucket+"/")
		body, found := objects[key]
		if !ok || !found {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newS3Source(t *testing.T, endpoint, key string) *source.S3Source {
	t.Helper()
	src, err := source.NewS3Source(context.Background(), source.S3Config{
		Bucket:          "portfolio",
		Key:             key,
		Endpoint:        endpoint,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)
	return src
}

func TestS3Source_LoadSnapshot(t *testing.T) {
	srv := fakeBucket(t, "portfolio", map[string]string{"exports/data.json": sampleSnapshot})
	defer srv.Close()

	src := newS3Source(t, srv.URL, "exports/data.json")
	assert.Equal(t, "s3://portfolio/exports/data.json", src.Name())

	snap, err := source.LoadSnapshot(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, snap.Technologies, 1)
}

func TestS3Source_MissingObject(t *testing.T) {
	srv := fakeBucket(t, "portfolio", nil)
	defer srv.Close()

	_, err := newS3Source(t, srv.URL, "data.json").Load(context.Background())
	assert.Error(t, err)
}

func TestNewS3Source_RequiresBucketAndKey(t *testing.T) {
	_, err := source.NewS3Source(context.Background(), source.S3Config{Bucket: "b"})
	assert.Error(t, err)
}

func TestS3Source_ObjectTooLarge(t *testing.T) {
	srv := fakeBucket(t, "portfolio", map[string]string{"data.json": sampleSnapshot})
	defer srv.Close()

	src, err := source.NewS3Source(context.Background(), source.S3Config{
		Bucket:          "portfolio",
		Key:             "data.json",
		Endpoint:        srv.URL,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		MaxBytes:        16,
	})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, source.ErrTooLarge)
}
