package cli

import (
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := d.sessions.Login(cmd.Context(), email, password); err != nil {
				return writeErr(cmd, err)
			}
			sess := d.sessions.Current()
			return writeOut(cmd, app, map[string]any{
				"user_id": sess.SubjectID,
				"role":    sess.Role,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := d.sessions.Register(cmd.Context(), email, password); err != nil {
				return writeErr(cmd, err)
			}
			sess := d.sessions.Current()
			return writeOut(cmd, app, map[string]any{
				"user_id": sess.SubjectID,
				"role":    sess.Role,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session (local state is cleared even if the server is unreachable)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := d.sessions.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			d.db.Fence()
			return writeOut(cmd, app, map[string]string{"status": "logged out"})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the restored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess := d.sessions.Current()
			if err := guard(sess, ""); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"user_id": sess.SubjectID,
				"role":    sess.Role,
			})
		},
	}
}
