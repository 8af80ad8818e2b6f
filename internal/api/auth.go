package api

import (
	"context"

	"taskdeck-cli/internal/model"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success shape of login and register. Register only
// returns the token; user_id and role stay empty and the caller recovers
// them from the token claims.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	UserID      string     `json:"user_id"`
	Role        model.Role `json:"role"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	if err := c.postJSON(ctx, "/auth/login", creds, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	if err := c.postJSON(ctx, "/auth/register", creds, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Logout revokes the current token server-side. Callers treat this as
// best-effort: local session state is cleared regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/auth/logout", nil, nil)
}
