package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/session"
)

var errNotLoggedIn = errors.New("not logged in (run `taskdeck login`)")

var errAdminOnly = errors.New("admin role required")

var errConfirmRequired = errors.New("refusing a destructive operation without --yes")

// writeErr prints a JSON error envelope to stderr and returns err so the
// process exits non-zero.
func writeErr(cmd *cobra.Command, err error) error {
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), string(b))
	return err
}

// guard maps an access decision onto CLI errors. DecisionDefault (wrong
// role) is an error here rather than a redirect: a one-shot command has
// no default view to fall back to.
func guard(sess session.Session, required model.Role) error {
	switch perm.Decide(sess, required) {
	case perm.DecisionAllow:
		return nil
	case perm.DecisionDefault:
		return errAdminOnly
	default:
		return errNotLoggedIn
	}
}
