package cli

import (
	"context"

	"github.com/spf13/cobra"

	"taskdeck-cli/internal/tui"
)

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive task browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
}

func runTUI(ctx context.Context, app *App) error {
	d, err := wire(ctx, app)
	if err != nil {
		return err
	}
	return tui.Run(tui.Deps{
		Sessions: d.sessions,
		DB:       d.db,
		Ctrl:     d.ctrl,
		Pipe:     d.pipe,
	})
}
