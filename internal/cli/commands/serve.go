package commands

import (
	"os/signal"
	"syscall"

	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/cardsnap/cardsnap/internal/server"
	"github.com/cardsnap/cardsnap/internal/snapshot"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local preview of rendered cards",
		Long: `Start a local HTTP server previewing the cards in the cards
directory. Fragments are served inline (data URIs); PNG routes require
a configured rasterizer.`,
		Example: `  cardsnap serve --cards-dir cards/ --port 8455`,
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	rc, err := GetRunContext(cmd)
	if err != nil {
		return err
	}
	defer img.Cleanup()

	var rasterizer snapshot.Rasterizer
	if rc.Config.RasterizerURL != "" {
		rasterizer = snapshot.NewHTTPRasterizer(rc.Config.RasterizerURL, rc.Logger)
	}

	srv := server.New(server.Config{
		CardsDir:      rc.Config.CardsDir,
		Port:          rc.Config.Port,
		RenderOpts:    rc.RenderOptions(img.Inline),
		Rasterizer:    rasterizer,
		SnapshotWidth: rc.Config.SnapshotWidth,
		Logger:        rc.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
