package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const initConfig = `# cardsnap configuration
timezone: UTC
site_url: http://localhost:3000
cards_dir: cards
# rasterizer_url: http://localhost:9100/render
`

const sampleCard = `{
  "id": 1,
  "name": "Orders This Week",
  "display": "line",
  "dataset_query": {
    "type": "query",
    "query": {
      "aggregation": "count"
    }
  }
}
`

const sampleResult = `{
  "columns": [
    {"name": "created_at", "base_type": "type/DateTime", "unit": "day"},
    {"name": "count", "base_type": "type/Integer"}
  ],
  "rows": [
    ["2024-03-01", 18],
    ["2024-03-02", 25],
    ["2024-03-03", 21],
    ["2024-03-04", 34],
    ["2024-03-05", 29]
  ]
}
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a cardsnap workspace",
		Long: `Initialize a cardsnap workspace with a configuration file and an
example card/result pair.

This creates:
  - cardsnap.yaml configuration file
  - cards/ directory with a sample card`,
		Example: `  # Initialize in current directory
  cardsnap init

  # Initialize in a new directory
  cardsnap init my-digests

  # Force overwrite existing config
  cardsnap init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "cardsnap.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("cardsnap.yaml already exists. Use --force to overwrite")
	}

	cardsDir := filepath.Join(dir, "cards")
	if err := os.MkdirAll(cardsDir, 0o750); err != nil {
		return fmt.Errorf("failed to create cards directory: %w", err)
	}

	files := []struct {
		path    string
		content string
	}{
		{configPath, initConfig},
		{filepath.Join(cardsDir, "orders.card.json"), sampleCard},
		{filepath.Join(cardsDir, "orders.result.json"), sampleResult},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.content), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "cardsnap workspace initialized!")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  cardsnap render cards/orders.card.json cards/orders.result.json")
	fmt.Fprintln(out, "  cardsnap serve     Preview cards in the browser")
	fmt.Fprintln(out, "  cardsnap digest    Assemble every card into one digest")
	return nil
}
