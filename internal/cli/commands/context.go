// Package commands implements the cardsnap subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardsnap/cardsnap/internal/cli/config"
	"github.com/cardsnap/cardsnap/internal/render"
	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/spf13/cobra"
)

// runContextKey stores the RunContext in the command context.
type runContextKey struct{}

// RunContext carries the loaded configuration and logger into command
// handlers.
type RunContext struct {
	Config *config.Config
	Logger *slog.Logger
}

// WithRunContext attaches the run context for command handlers.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// GetRunContext retrieves the run context set up by the root command.
func GetRunContext(cmd *cobra.Command) (*RunContext, error) {
	rc, ok := cmd.Context().Value(runContextKey{}).(*RunContext)
	if !ok || rc == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	return rc, nil
}

// RenderOptions builds renderer options from the configuration.
func (rc *RunContext) RenderOptions(mode img.Mode) render.Options {
	return render.Options{
		Mode:           mode,
		Location:       rc.Config.Location(),
		Style:          render.DefaultStyle(),
		SiteURL:        rc.Config.SiteURL,
		IncludeTitle:   rc.Config.IncludeTitle,
		IncludeButtons: rc.Config.IncludeButtons,
		Logger:         rc.Logger,
	}
}
