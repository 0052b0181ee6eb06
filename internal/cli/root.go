// Package cli provides the command-line interface for cardsnap.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cardsnap/cardsnap/internal/cli/commands"
	"github.com/cardsnap/cardsnap/internal/cli/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardsnap",
		Short: "cardsnap - render query cards to HTML and PNG",
		Long: `cardsnap renders analytical query results ("cards") into
self-contained HTML fragments and PNG snapshots, the building blocks of
scheduled email digests.

Each card is classified by its result shape (scalar, sparkline, bar,
table, or empty) and rendered with either inline data-URI images or
content-id attachments for email delivery.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := commands.WithRunContext(cmd.Context(), &commands.RunContext{
				Config: cfg,
				Logger: logger,
			})
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cardsnap.yaml)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for timestamp formatting")
	rootCmd.PersistentFlags().String("site-url", "", "Base URL for card links")
	rootCmd.PersistentFlags().String("rasterizer-url", "", "HTML-to-PNG rasterizer service URL")
	rootCmd.PersistentFlags().Int("snapshot-width", 0, "Raster width for PNG snapshots")
	rootCmd.PersistentFlags().String("cards-dir", "", "Directory containing card/result JSON pairs")
	rootCmd.PersistentFlags().Int("port", 0, "Preview server port")
	rootCmd.PersistentFlags().Bool("include-title", true, "Render card title blocks")
	rootCmd.PersistentFlags().Bool("include-buttons", true, "Render clickable title icons")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewSnapshotCommand())
	rootCmd.AddCommand(commands.NewDigestCommand())
	rootCmd.AddCommand(commands.NewServeCommand())

	return rootCmd
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
