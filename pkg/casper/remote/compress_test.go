package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuJSON = `[{"link":"/orders","level":"1","props":{"component":"orders"}},{"link":"/reports","level":"1","props":{"component":"reports","component_source":"/lib/reports.js"}}]`

func TestFetchMenuZstd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "zstd")
		w.Header().Set("Content-Encoding", "zstd")

		enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		require.NoError(t, err)
		_, _ = enc.Write([]byte(menuJSON))
		require.NoError(t, enc.Close())
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, srv.Client()).FetchMenu(context.Background(), "/menu.json", "secret")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "/lib/reports.js", items[1].Props.ComponentSource)
}

func TestFetchMenuGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")

		zw := gzip.NewWriter(w)
		_, _ = zw.Write([]byte(menuJSON))
		require.NoError(t, zw.Close())
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, srv.Client()).FetchMenu(context.Background(), "/menu.json", "secret")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetchMenuUnknownEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write([]byte("whatever"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).FetchMenu(context.Background(), "/menu.json", "secret")
	assert.ErrorContains(t, err, "unsupported content encoding")
}
