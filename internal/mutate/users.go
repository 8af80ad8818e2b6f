package mutate

import (
	"context"

	"taskdeck-cli/internal/model"
)

// UpdateUserRole changes a user's role and mirrors the change into the
// store on success.
func (p *Pipeline) UpdateUserRole(ctx context.Context, id string, role model.Role) error {
	patch := model.UserPatch{Role: &role}
	if err := p.gw.UpdateUser(ctx, id, patch); err != nil {
		return err
	}
	p.db.PatchUser(id, patch)
	return nil
}

// UpdateUserPassword changes a user's password. The password is the sole
// field of its own call and is write-only: nothing changes in the read
// model on success.
func (p *Pipeline) UpdateUserPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return ErrNoFields
	}
	return p.gw.UpdateUser(ctx, id, model.UserPatch{Password: &password})
}

// UpdateUser guards against combined role+password updates for callers
// that build a patch dynamically.
func (p *Pipeline) UpdateUser(ctx context.Context, id string, patch model.UserPatch) error {
	if patch.Role == nil && patch.Password == nil {
		return ErrNoFields
	}
	if patch.Role != nil && patch.Password != nil {
		return ErrMixedUserUpdate
	}
	if patch.Password != nil {
		return p.UpdateUserPassword(ctx, id, *patch.Password)
	}
	return p.UpdateUserRole(ctx, id, *patch.Role)
}

// DeleteUser deletes the user and removes it from the store. Caller
// confirms first; this is irreversible.
func (p *Pipeline) DeleteUser(ctx context.Context, id string) error {
	if err := p.gw.DeleteUser(ctx, id); err != nil {
		return err
	}
	p.db.RemoveUser(id)
	return nil
}
