// Package server provides a local preview server for rendered cards.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Server previews cards from a directory of card/result JSON pairs.
type Server struct {
	cardsDir   string
	port       int
	renderOpts render.Options
	rasterizer snapshot.Rasterizer
	width      int
	logger     *slog.Logger
}

// Config holds configuration for the preview server.
type Config struct {
	CardsDir string
	Port     int
	// RenderOpts are the base options; the server forces inline mode
	// per request since browsers cannot resolve cid: references.
	RenderOpts render.Options
	// Rasterizer is optional; without it PNG routes return 503.
	Rasterizer    snapshot.Rasterizer
	SnapshotWidth int
	Logger        *slog.Logger
}

// New creates a preview server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	width := cfg.SnapshotWidth
	if width <= 0 {
		width = snapshot.DefaultWidth
	}
	return &Server{
		cardsDir:   cfg.CardsDir,
		port:       cfg.Port,
		renderOpts: cfg.RenderOpts,
		rasterizer: cfg.Rasterizer,
		width:      width,
		logger:     logger,
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting preview server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "cards_dir", s.cardsDir)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down preview server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Routes builds the HTTP handler. Exposed separately for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/cards", http.StatusFound)
	})
	r.Get("/cards", s.handleIndex)
	r.Get("/cards/{name}.png", s.handleCardPNG)
	r.Get("/cards/{name}", s.handleCard)

	return r
}
