package commands

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/pkg/card"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the workspace for problems",
		Long: `Check the cardsnap workspace for problems.

The doctor command verifies:
  - the configuration loads and validates
  - the cards directory exists and holds card/result pairs
  - every pair parses, validates, and classifies
  - the rasterizer service responds, when one is configured`,
		Example: `  cardsnap doctor`,
		Args:    cobra.NoArgs,
		RunE:    runDoctor,
	}
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type checkResult struct {
	name   string
	status string // "ok", "warn", "fail"
	detail string
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	rc, err := GetRunContext(cmd)
	if err != nil {
		return err
	}

	checks := []checkResult{
		checkTimezone(rc),
		checkCardsDir(rc),
	}
	checks = append(checks, checkPairs(rc)...)
	checks = append(checks, checkRasterizer(rc))

	out := cmd.OutOrStdout()
	failed := 0
	for _, c := range checks {
		icon := okStyle.Render("ok")
		switch c.status {
		case "warn":
			icon = warnStyle.Render("warn")
		case "fail":
			icon = failStyle.Render("fail")
			failed++
		}
		fmt.Fprintf(out, "[%s] %s", icon, c.name)
		if c.detail != "" {
			fmt.Fprintf(out, ": %s", c.detail)
		}
		fmt.Fprintln(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func checkTimezone(rc *RunContext) checkResult {
	return checkResult{
		name:   "timezone",
		status: "ok",
		detail: rc.Config.Location().String(),
	}
}

func checkCardsDir(rc *RunContext) checkResult {
	matches, err := filepath.Glob(filepath.Join(rc.Config.CardsDir, "*.card.json"))
	if err != nil || len(matches) == 0 {
		return checkResult{
			name:   "cards directory",
			status: "warn",
			detail: fmt.Sprintf("no cards found in %s", rc.Config.CardsDir),
		}
	}
	return checkResult{
		name:   "cards directory",
		status: "ok",
		detail: fmt.Sprintf("%d card(s) in %s", len(matches), rc.Config.CardsDir),
	}
}

// checkPairs loads every card/result pair and reports how each would
// render, surfacing pairs that fail to parse or validate.
func checkPairs(rc *RunContext) []checkResult {
	matches, _ := filepath.Glob(filepath.Join(rc.Config.CardsDir, "*.card.json"))
	sort.Strings(matches)

	var results []checkResult
	for _, cardPath := range matches {
		name := strings.TrimSuffix(filepath.Base(cardPath), ".card.json")
		resultPath := filepath.Join(rc.Config.CardsDir, name+".result.json")

		c, err := card.LoadCard(cardPath)
		if err != nil {
			results = append(results, checkResult{name: "card " + name, status: "fail", detail: err.Error()})
			continue
		}
		res, err := card.LoadResult(resultPath)
		if err != nil {
			results = append(results, checkResult{name: "card " + name, status: "fail", detail: err.Error()})
			continue
		}

		kind := render.Classify(*c, res)
		status := "ok"
		if kind == render.Unsupported {
			status = "warn"
		}
		results = append(results, checkResult{
			name:   "card " + name,
			status: status,
			detail: kind.String(),
		})
	}
	return results
}

func checkRasterizer(rc *RunContext) checkResult {
	if rc.Config.RasterizerURL == "" {
		return checkResult{
			name:   "rasterizer",
			status: "warn",
			detail: "not configured; snapshot and PNG routes disabled",
		}
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Head(rc.Config.RasterizerURL)
	if err != nil {
		return checkResult{name: "rasterizer", status: "fail", detail: err.Error()}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return checkResult{
		name:   "rasterizer",
		status: "ok",
		detail: rc.Config.RasterizerURL,
	}
}
