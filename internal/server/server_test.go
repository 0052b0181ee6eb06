package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cardsnap/cardsnap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, cardJSON, resultJSON string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".card.json"), []byte(cardJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".result.json"), []byte(resultJSON), 0o600))
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.CardsDir == "" {
		cfg.CardsDir = t.TempDir()
		writeFixture(t, cfg.CardsDir, "total",
			`{"id": 1, "name": "Total Orders", "display": "scalar"}`,
			`{"columns": [{"name": "count", "base_type": "type/Integer"}], "rows": [[42]]}`,
		)
	}
	cfg.Logger = testutil.NewTestLogger(t)
	return New(cfg)
}

func TestIndexListsPairedCards(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "beta",
		`{"id": 2, "name": "Beta"}`,
		`{"columns": [{"name": "count", "base_type": "type/Integer"}], "rows": [[1]]}`,
	)
	writeFixture(t, dir, "alpha",
		`{"id": 1, "name": "Alpha"}`,
		`{"columns": [{"name": "count", "base_type": "type/Integer"}], "rows": [[2]]}`,
	)
	// A card without its result is not listed.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.card.json"), []byte(`{"id": 3}`), 0o600))

	srv := newTestServer(t, Config{CardsDir: dir})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/cards/alpha"`)
	assert.Contains(t, body, `href="/cards/beta"`)
	assert.NotContains(t, body, "orphan")
	assert.Less(t, strings.Index(body, "alpha"), strings.Index(body, "beta"))
}

func TestRootRedirects(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cards", rec.Header().Get("Location"))
}

func TestCardPage(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards/total", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "42")
	// Browsers cannot resolve cid: references; everything is inlined.
	assert.NotContains(t, rec.Body.String(), "cid:")
}

func TestCardPageUnknown(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCardPageTraversalRejected(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards/..%2fsecret", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCardPNGWithoutRasterizer(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards/total.png", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubRasterizer struct {
	width int
}

func (s *stubRasterizer) RasterizePNG(_ context.Context, _ string, width int) ([]byte, error) {
	s.width = width
	return []byte("png"), nil
}

func TestCardPNG(t *testing.T) {
	stub := &stubRasterizer{}
	srv := newTestServer(t, Config{Rasterizer: stub, SnapshotWidth: 320})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards/total.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", rec.Body.String())
	assert.Equal(t, 320, stub.width)
}
