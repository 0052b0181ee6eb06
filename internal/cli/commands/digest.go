package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// renderWorkers bounds concurrent card renders in a digest.
const renderWorkers = 4

// NewDigestCommand creates the digest command.
func NewDigestCommand() *cobra.Command {
	var (
		mode   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "digest [dir]",
		Short: "Render every card in a directory into one digest",
		Long: `Render all card/result pairs in a directory into a single digest:
an HTML body, an attachments directory, and a manifest mapping each
content id to its byte source. The output is what an email composer
needs to assemble one scheduled delivery.

Cards are discovered as <name>.card.json + <name>.result.json pairs.
Cards render independently and concurrently; one failing card renders
as a failure notice without affecting its siblings.`,
		Example: `  cardsnap digest cards/ -o digest/
  cardsnap digest cards/ --mode inline`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runDigest(cmd, dir, mode, outDir)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "attachment", "Image mode: inline or attachment")
	cmd.Flags().StringVarP(&outDir, "output", "o", "digest", "Output directory")
	return cmd
}

type digestSection struct {
	Name string
	HTML template.HTML
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"/></head>
<body style="margin: 0; padding: 16px; background-color: #FFFFFF;">
{{- range .Sections}}
<div style="padding: 16px 0; border-bottom: 1px solid #EDEFF1;">
{{.HTML}}
</div>
{{- end}}
</body>
</html>
`))

func runDigest(cmd *cobra.Command, dir, modeFlag, outDir string) error {
	rc, err := GetRunContext(cmd)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = rc.Config.CardsDir
	}

	mode, err := img.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	defer img.Cleanup()

	names, err := discoverCards(dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no card/result pairs found in %s", dir)
	}

	opts := rc.RenderOptions(mode)
	sections := make([]digestSection, len(names))
	attachments := make([]map[string]img.ByteSource, len(names))

	// Renders share no mutable state, so independent cards can run in
	// parallel. A failed card already collapsed to its failure fragment
	// inside render.Card.
	eg, _ := errgroup.WithContext(cmd.Context())
	eg.SetLimit(renderWorkers)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			c, res, err := loadPair(
				filepath.Join(dir, name+".card.json"),
				filepath.Join(dir, name+".result.json"),
			)
			if err != nil {
				rc.Logger.Error("skipping unreadable card", "card", name, "error", err)
				return nil
			}
			frag, outcome := render.Card(opts, *c, res)
			rc.Logger.Debug("rendered card", "card", name, "outcome", outcome.String())
			sections[i] = digestSection{Name: name, HTML: template.HTML(frag.Content.Render())}
			attachments[i] = frag.Attachments
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	return writeDigest(rc, outDir, sections, attachments)
}

func writeDigest(rc *RunContext, outDir string, sections []digestSection, attachments []map[string]img.ByteSource) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	rendered := sections[:0]
	for _, s := range sections {
		if s.HTML != "" {
			rendered = append(rendered, s)
		}
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, struct{ Sections []digestSection }{rendered}); err != nil {
		return fmt.Errorf("failed to build digest page: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "digest.html"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	// Identical imagery shares a content id, so merging dedupes the
	// static icons across cards.
	merged := map[string]img.ByteSource{}
	for _, m := range attachments {
		for cid, src := range m {
			merged[cid] = src
		}
	}

	manifest := map[string]string{}
	if len(merged) > 0 {
		attachDir := filepath.Join(outDir, "attachments")
		if err := os.MkdirAll(attachDir, 0o755); err != nil {
			return fmt.Errorf("failed to create attachments dir: %w", err)
		}
		for cid, src := range merged {
			data, err := src.Bytes()
			if err != nil {
				return fmt.Errorf("failed to resolve attachment %s: %w", cid, err)
			}
			rel := filepath.Join("attachments", cid+".png")
			if err := os.WriteFile(filepath.Join(outDir, rel), data, 0o644); err != nil {
				return fmt.Errorf("failed to write attachment %s: %w", cid, err)
			}
			manifest[cid] = rel
		}

		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "manifest.json"), data, 0o644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	rc.Logger.Info("digest written", "dir", outDir, "cards", len(rendered), "attachments", len(manifest))
	return nil
}

// discoverCards lists the pair names in a directory, sorted for stable
// digest order.
func discoverCards(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.card.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".card.json")
		if _, err := os.Stat(filepath.Join(dir, name+".result.json")); err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
