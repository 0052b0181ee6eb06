package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/testutil"
	"github.com/cardsnap/cardsnap/pkg/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	doc, err := Document(`<div>hello</div>`, 400)
	require.NoError(t, err)

	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "width: 400px")
	// Fragment markup passes through unescaped.
	assert.Contains(t, doc, "<div>hello</div>")
}

func TestHTTPRasterizer(t *testing.T) {
	var got rasterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "image/png", r.Header.Get("Accept"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("fake png"))
	}))
	defer srv.Close()

	r := NewHTTPRasterizer(srv.URL, testutil.NewTestLogger(t))
	data, err := r.RasterizePNG(context.Background(), "<html></html>", 400)
	require.NoError(t, err)

	assert.Equal(t, []byte("fake png"), data)
	assert.Equal(t, "<html></html>", got.HTML)
	assert.Equal(t, 400, got.Width)
}

func TestHTTPRasterizerServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no renderer available", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	r := NewHTTPRasterizer(srv.URL, nil)
	_, err := r.RasterizePNG(context.Background(), "<html></html>", 400)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "no renderer available")
}

func TestHTTPRasterizerRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	r := NewHTTPRasterizer(srv.URL, nil)
	data, err := r.RasterizePNG(context.Background(), "<html></html>", 400)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, 2, calls)
}

type fakeRasterizer struct {
	doc   string
	width int
}

func (f *fakeRasterizer) RasterizePNG(_ context.Context, doc string, width int) ([]byte, error) {
	f.doc, f.width = doc, width
	return []byte("png"), nil
}

func TestCardPNG(t *testing.T) {
	c := card.Card{ID: 1, Name: "Total"}
	res := &card.QueryResult{
		Columns: []card.Column{{Name: "count", BaseType: "type/Integer"}},
		Rows:    []card.Row{{float64(42)}},
	}

	fake := &fakeRasterizer{}
	data, err := CardPNG(context.Background(), fake, render.Options{}, c, res, 0)
	require.NoError(t, err)

	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, DefaultWidth, fake.width)
	assert.Contains(t, fake.doc, "42")
	// Inline mode is forced so the document is self-contained.
	assert.False(t, strings.Contains(fake.doc, "cid:"))
}
