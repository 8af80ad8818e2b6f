package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskdeck-cli/internal/format"
	"taskdeck-cli/internal/model"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User administration (admin role required)",
	}

	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersSetRoleCmd(app))
	cmd.AddCommand(newUsersSetPasswordCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))

	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), model.RoleAdmin); err != nil {
				return writeErr(cmd, err)
			}
			if err := d.ctrl.RefreshUsers(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			users, fetchErr := d.db.Users()
			if fetchErr != "" {
				return writeErr(cmd, fmt.Errorf("%s", fetchErr))
			}
			if app.Format == "table" {
				fmt.Fprint(cmd.OutOrStdout(), format.RenderUsers(users))
				return nil
			}
			return writeOut(cmd, app, users)
		},
	}
}

func newUsersSetRoleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-role <user-id> <user|admin>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := model.Role(args[1])
			if role != model.RoleUser && role != model.RoleAdmin {
				return writeErr(cmd, fmt.Errorf("invalid role %q", args[1]))
			}
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), model.RoleAdmin); err != nil {
				return writeErr(cmd, err)
			}
			if err := d.pipe.UpdateUserRole(cmd.Context(), args[0], role); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"status": "updated"})
		},
	}
	return cmd
}

func newUsersSetPasswordCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "set-password <user-id>",
		Short: "Change a user's password (a separate call from role changes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), model.RoleAdmin); err != nil {
				return writeErr(cmd, err)
			}
			if err := d.pipe.UpdateUserPassword(cmd.Context(), args[0], password); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"status": "updated"})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errConfirmRequired)
			}
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), model.RoleAdmin); err != nil {
				return writeErr(cmd, err)
			}
			if err := d.pipe.DeleteUser(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"status": "deleted"})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
