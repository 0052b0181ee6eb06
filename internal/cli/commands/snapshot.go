package commands

import (
	"fmt"
	"os"

	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/cardsnap/cardsnap/internal/snapshot"
	"github.com/spf13/cobra"
)

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "snapshot <card.json> <result.json>",
		Short: "Render a card to a PNG via the document rasterizer",
		Long: `Render one card and rasterize it to a PNG image.

Requires a rasterizer service (rasterizer_url in config, CARDSNAP_RASTERIZER_URL,
or --rasterizer-url) that accepts an HTML document and returns a bitmap.`,
		Example: `  cardsnap snapshot card.json result.json -o card.png
  cardsnap snapshot card.json result.json --rasterizer-url http://localhost:9222/render`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, args[0], args[1], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "card.png", "Output PNG path")
	return cmd
}

func runSnapshot(cmd *cobra.Command, cardPath, resultPath, outPath string) error {
	rc, err := GetRunContext(cmd)
	if err != nil {
		return err
	}
	if rc.Config.RasterizerURL == "" {
		return fmt.Errorf("no rasterizer configured (set rasterizer_url or --rasterizer-url)")
	}

	c, res, err := loadPair(cardPath, resultPath)
	if err != nil {
		return err
	}

	rasterizer := snapshot.NewHTTPRasterizer(rc.Config.RasterizerURL, rc.Logger)
	png, err := snapshot.CardPNG(cmd.Context(), rasterizer, rc.RenderOptions(img.Inline), *c, res, rc.Config.SnapshotWidth)
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	if err := os.WriteFile(outPath, png, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	rc.Logger.Info("snapshot written", "path", outPath, "bytes", len(png))
	return nil
}
