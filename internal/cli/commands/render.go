package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/render/format"
	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/cardsnap/cardsnap/pkg/card"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		mode    string
		fmtFlag string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "render <card.json> <result.json>",
		Short: "Render a card's result to an HTML fragment",
		Long: `Render one card to an HTML fragment.

In attachment mode, content-id references are used for imagery and an
attachment manifest (content-id -> byte source) is printed to stderr.
In inline mode, images are embedded as data URIs and the fragment is
fully self-contained.`,
		Example: `  # Self-contained HTML to stdout
  cardsnap render card.json result.json

  # Email-style fragment with cid: references
  cardsnap render card.json result.json --mode attachment

  # Quick terminal preview
  cardsnap render card.json result.json --format text`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRenderCard(cmd, args[0], args[1], mode, fmtFlag, outPath)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "inline", "Image mode: inline or attachment")
	cmd.Flags().StringVar(&fmtFlag, "format", "html", "Output format: html or text")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write output to file instead of stdout")
	return cmd
}

func runRenderCard(cmd *cobra.Command, cardPath, resultPath, modeFlag, fmtFlag, outPath string) error {
	rc, err := GetRunContext(cmd)
	if err != nil {
		return err
	}

	c, res, err := loadPair(cardPath, resultPath)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if fmtFlag == "text" {
		return renderText(w, rc, *c, res)
	}

	mode, err := img.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	defer img.Cleanup()

	frag, outcome := render.Card(rc.RenderOptions(mode), *c, res)
	if _, err := io.WriteString(w, frag.Content.Render()+"\n"); err != nil {
		return err
	}

	if outcome == render.Failed {
		rc.Logger.Warn("card rendered as failure fragment", "card", c.Name)
	}
	for cid, src := range frag.Attachments {
		location := "(buffer)"
		if f, ok := src.(img.FileSource); ok {
			location = string(f)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "attachment %s -> %s\n", cid, location)
	}
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	kindStyle  = lipgloss.NewStyle().Faint(true)
)

// renderText writes a terminal preview of the card's data.
func renderText(w io.Writer, rc *RunContext, c card.Card, res *card.QueryResult) error {
	kind := render.Classify(c, res)
	fmt.Fprintln(w, titleStyle.Render(c.Name))
	fmt.Fprintln(w, kindStyle.Render(fmt.Sprintf("[%s]", kind)))

	if res.Error != "" {
		fmt.Fprintf(w, "query error: %s\n", res.Error)
		return nil
	}
	if len(res.Rows) == 0 {
		fmt.Fprintln(w, "(no results)")
		return nil
	}

	loc := rc.Config.Location()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		name := col.DisplayName
		if name == "" {
			name = col.Name
		}
		headerRow[i] = name
	}
	t.AppendHeader(headerRow)

	for _, row := range res.Rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = format.Cell(loc, v, res.Columns[i])
		}
		t.AppendRow(cells)
	}

	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return nil
}

func loadPair(cardPath, resultPath string) (*card.Card, *card.QueryResult, error) {
	c, err := card.LoadCard(cardPath)
	if err != nil {
		return nil, nil, err
	}
	res, err := card.LoadResult(resultPath)
	if err != nil {
		return nil, nil, err
	}
	return c, res, nil
}
