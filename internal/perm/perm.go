// Package perm gates access to role-restricted views from session state.
// Decisions are pure: no I/O, no session mutation.
package perm

import (
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/session"
)

type Decision int

const (
	// DecisionPending means the session lifecycle is still unknown
	// (restore hasn't finished). The consumer must render nothing
	// conclusive rather than flash a premature redirect.
	DecisionPending Decision = iota

	DecisionAllow

	// DecisionLogin sends an unauthenticated caller to the login surface.
	DecisionLogin

	// DecisionDefault sends an authenticated caller with the wrong role to
	// the default authorized view (tasks). It is a redirect, not an error.
	DecisionDefault
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "login"
	case DecisionDefault:
		return "default-view"
	default:
		return "pending"
	}
}

// Decide evaluates access to a view requiring the given role. An empty
// required role means any authenticated session is enough.
func Decide(sess session.Session, required model.Role) Decision {
	switch sess.State {
	case session.LifecycleUnknown, session.LifecycleAuthenticating:
		return DecisionPending
	case session.LifecycleAuthenticated:
		if required == "" || sess.Role == required {
			return DecisionAllow
		}
		return DecisionDefault
	default:
		// Unauthenticated or failed.
		return DecisionLogin
	}
}
