package api

import (
	"context"
	"net/url"

	"taskdeck-cli/internal/model"
)

// ListUsers fetches the full user collection. The server rejects non-admin
// callers with 403.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.getJSON(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser sends a partial user update. Role and password must never be
// combined in one call; the mutation pipeline enforces that before the
// request is built.
func (c *Client) UpdateUser(ctx context.Context, id string, patch model.UserPatch) error {
	return c.putJSON(ctx, "/users/"+url.PathEscape(id), patch, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.deleteCall(ctx, "/users/"+url.PathEscape(id))
}
