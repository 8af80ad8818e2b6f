package mutate

import "errors"

var ErrNoFields = errors.New("no fields to update")

// ErrMixedUserUpdate guards the contract that a password change is its own
// call: it must never ride along with a role change in one request.
var ErrMixedUserUpdate = errors.New("password and role updates must be separate calls")

var ErrMissingTitle = errors.New("title is required")

var ErrMissingDueDate = errors.New("due date is required")
