package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/cardsnap/cardsnap/internal/snapshot"
	"github.com/cardsnap/cardsnap/pkg/card"
	"github.com/go-chi/chi/v5"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"/><title>cardsnap preview</title></head>
<body style="font-family: sans-serif; padding: 24px;">
<h1>Cards</h1>
<ul>
{{- range .Names}}
<li><a href="/cards/{{.}}">{{.}}</a> (<a href="/cards/{{.}}.png">png</a>)</li>
{{- end}}
</ul>
</body>
</html>
`))

var cardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"/><title>{{.Name}}</title></head>
<body style="margin: 0; padding: 24px; background-color: #F9FBFC;">
<div style="max-width: 480px; background-color: #FFFFFF; padding: 16px; border: 1px solid #EDEFF1; border-radius: 4px;">
{{.Fragment}}
</div>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.listCards()
	if err != nil {
		s.logger.Error("failed to list cards", "error", err)
		http.Error(w, "failed to list cards", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, struct{ Names []string }{names}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, res, err := s.loadPair(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	opts := s.renderOpts
	opts.Mode = img.Inline
	frag, _ := render.Card(opts, *c, res)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	err = cardTemplate.Execute(&buf, struct {
		Name     string
		Fragment template.HTML
	}{Name: name, Fragment: template.HTML(frag.Content.Render())})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCardPNG(w http.ResponseWriter, r *http.Request) {
	if s.rasterizer == nil {
		http.Error(w, "no rasterizer configured", http.StatusServiceUnavailable)
		return
	}

	name := chi.URLParam(r, "name")
	c, res, err := s.loadPair(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	png, err := snapshot.CardPNG(r.Context(), s.rasterizer, s.renderOpts, *c, res, s.width)
	if err != nil {
		s.logger.Error("snapshot failed", "card", name, "error", err)
		http.Error(w, "snapshot failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) listCards() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.cardsDir, "*.card.json"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".card.json")
		if _, err := os.Stat(filepath.Join(s.cardsDir, name+".result.json")); err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Server) loadPair(name string) (*card.Card, *card.QueryResult, error) {
	if strings.ContainsAny(name, "/\\.") {
		return nil, nil, fmt.Errorf("invalid card name %q", name)
	}
	c, err := card.LoadCard(filepath.Join(s.cardsDir, name+".card.json"))
	if err != nil {
		return nil, nil, err
	}
	res, err := card.LoadResult(filepath.Join(s.cardsDir, name+".result.json"))
	if err != nil {
		return nil, nil, err
	}
	return c, res, nil
}
