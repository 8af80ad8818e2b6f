package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"taskdeck-cli/internal/model"
)

// tokenClaims is the subset of the server's JWT payload we care about.
// The token is never verified client-side (the client has no key and the
// server is the authority); claims are only peeked at.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

func peekClaims(token string) (tokenClaims, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return tokenClaims{}, false
	}
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return tokenClaims{}, false
	}
	return claims, true
}

func tokenExpiry(token string) (time.Time, bool) {
	claims, ok := peekClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// tokenIdentity recovers subject and role from the token claims. Needed
// after register, whose response carries only the token.
func tokenIdentity(token string) (subject string, role model.Role, ok bool) {
	claims, ok := peekClaims(token)
	if !ok {
		return "", "", false
	}
	return claims.Subject, model.Role(claims.Role), claims.Subject != ""
}
