// Package snapshot turns a rendered card into a PNG by handing a
// minimal HTML document to an external document rasterizer.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/cardsnap/cardsnap/pkg/card"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultWidth is the raster width used when none is configured.
const DefaultWidth = 400

// Rasterizer renders an HTML document to a PNG of the given width.
// Implementations wrap an external HTML-to-raster service; this layer
// defines no timeout of its own beyond the caller's context.
type Rasterizer interface {
	RasterizePNG(ctx context.Context, doc string, width int) ([]byte, error)
}

// HTTPRasterizer talks to a rasterizer service over HTTP with retries.
type HTTPRasterizer struct {
	client *retryablehttp.Client
	url    string
}

// NewHTTPRasterizer builds a client for the service at url.
func NewHTTPRasterizer(url string, logger *slog.Logger) *HTTPRasterizer {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.Logger = nil
	if logger != nil {
		client.Logger = slog.NewLogLogger(logger.Handler(), slog.LevelDebug)
	}
	return &HTTPRasterizer{client: client, url: url}
}

type rasterRequest struct {
	HTML  string `json:"html"`
	Width int    `json:"width"`
}

// RasterizePNG posts the document and returns the encoded bitmap.
func (r *HTTPRasterizer) RasterizePNG(ctx context.Context, doc string, width int) ([]byte, error) {
	payload, err := json.Marshal(rasterRequest{HTML: doc, Width: width})
	if err != nil {
		return nil, fmt.Errorf("failed to encode raster request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build raster request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rasterizer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rasterizer returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read raster response: %w", err)
	}
	return data, nil
}

var docTemplate = template.Must(template.New("snapshot").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"/></head>
<body style="margin: 0; padding: 16px; width: {{.Width}}px; background-color: #FFFFFF;">
{{.Body}}
</body>
</html>
`))

// Document wraps a rendered fragment in the minimal HTML page the
// rasterizer consumes.
func Document(fragmentHTML string, width int) (string, error) {
	var buf bytes.Buffer
	err := docTemplate.Execute(&buf, struct {
		Body  template.HTML
		Width int
	}{Body: template.HTML(fragmentHTML), Width: width})
	if err != nil {
		return "", fmt.Errorf("failed to build snapshot document: %w", err)
	}
	return buf.String(), nil
}

// CardPNG renders the card inline (data URIs, no attachments to carry)
// and rasterizes it at the given width.
func CardPNG(ctx context.Context, r Rasterizer, opts render.Options, c card.Card, res *card.QueryResult, width int) ([]byte, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	opts.Mode = img.Inline

	frag, _ := render.Card(opts, c, res)
	doc, err := Document(frag.Content.Render(), width)
	if err != nil {
		return nil, err
	}
	return r.RasterizePNG(ctx, doc, width)
}
