package cli

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/format"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/query"
	"taskdeck-cli/internal/session"
	"taskdeck-cli/internal/store"
)

const defaultServer = "http://localhost:5000/api"

type App struct {
	Server     string
	ConfigDir  string
	Format     string
	PrettyJSON bool
}

// deps bundles the wired components one command invocation needs. Built
// fresh per invocation; the only state that survives between runs is the
// persisted credential.
type deps struct {
	gw       *api.Client
	db       *store.DB
	sessions *session.Manager
	ctrl     *query.Controller
	pipe     *mutate.Pipeline
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "Task management client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Log in, then browse tasks interactively
  taskdeck login --email a@b.com --password secret1
  taskdeck ui

  # Scriptable commands
  taskdeck tasks list --status "To Do" --sort -due_date
  taskdeck tasks create --title "Ship it" --due-date 2026-09-01 --doc spec.pdf
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(os.Getenv("TASKDECK_DEBUG")) != "" {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("TASKDECK_SERVER", defaultServer), "Base URL of the task service API")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("TASKDECK_CONFIG_DIR", ""), "Path to local state dir (default: ~/.taskdeck)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDECK_FORMAT", "json"), "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newUICmd(app))

	return cmd
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// wire builds the component graph and restores the persisted session.
func wire(ctx context.Context, app *App) (*deps, error) {
	dir := strings.TrimSpace(app.ConfigDir)
	if dir == "" {
		var err error
		dir, err = store.ConfigDir()
		if err != nil {
			return nil, err
		}
	}

	gw := api.New(app.Server)
	db := store.NewDB()
	sessions := session.NewManager(gw, store.NewCredStore(dir))
	ctrl := query.NewController(gw, db)
	pipe := mutate.NewPipeline(gw, db, ctrl)

	if _, err := sessions.Restore(ctx); err != nil {
		return nil, err
	}
	return &deps{gw: gw, db: db, sessions: sessions, ctrl: ctrl, pipe: pipe}, nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}
