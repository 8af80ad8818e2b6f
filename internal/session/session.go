package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/store"
)

type Lifecycle string

const (
	// LifecycleUnknown is the zero value, before Restore has run. Access
	// decisions must stay pending while the session is in this state.
	LifecycleUnknown         Lifecycle = ""
	LifecycleUnauthenticated Lifecycle = "unauthenticated"
	LifecycleAuthenticating  Lifecycle = "authenticating"
	LifecycleAuthenticated   Lifecycle = "authenticated"
	LifecycleFailed          Lifecycle = "failed"
)

// Session is the currently known identity. Token is present iff State is
// LifecycleAuthenticated; Role is only meaningful when authenticated.
type Session struct {
	Token     string
	SubjectID string
	Role      model.Role
	State     Lifecycle
}

func (s Session) Authenticated() bool { return s.State == LifecycleAuthenticated }

// ErrMissingCredentials is returned by Login/Register before any network
// call when email or password is empty.
var ErrMissingCredentials = errors.New("email and password are required")

// Manager owns the authentication credential, its persisted form, and its
// lifecycle. It configures the gateway's bearer on every transition so no
// other component ever touches the token.
type Manager struct {
	gw    *api.Client
	creds store.CredStore
	log   *logrus.Logger

	mu   sync.Mutex
	sess Session
}

func NewManager(gw *api.Client, creds store.CredStore) *Manager {
	return &Manager{
		gw:    gw,
		creds: creds,
		log:   logrus.StandardLogger(),
		sess:  Session{State: LifecycleUnknown},
	}
}

func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Restore reads the persisted credential at process start. When one is
// present the session becomes authenticated and the gateway gets the
// bearer attached; the token is not validated against the server (a stale
// one surfaces as a 401 on the first real call). Returns true when a
// credential was restored.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	creds, ok, err := m.creds.Load(ctx)
	if err != nil {
		m.setState(Session{State: LifecycleUnauthenticated})
		return false, err
	}
	if !ok {
		m.setState(Session{State: LifecycleUnauthenticated})
		return false, nil
	}

	if exp, known := tokenExpiry(creds.Token); known && time.Now().After(exp) {
		m.log.WithField("expired_at", exp.Format(time.RFC3339)).
			Warn("session: stored token is past its expiry; the next request will likely require a new login")
	}

	m.gw.Attach(creds.Token)
	m.setState(Session{
		Token:     creds.Token,
		SubjectID: creds.SubjectID,
		Role:      creds.Role,
		State:     LifecycleAuthenticated,
	})
	return true, nil
}

// Login authenticates against the server. Both fields are required before
// the call is attempted; an empty one fails locally without a roundtrip.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, email, password, m.gw.Login)
}

// Register creates an account and, on success, authenticates the caller.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, email, password, m.gw.Register)
}

func (m *Manager) authenticate(ctx context.Context, email, password string, call func(context.Context, api.Credentials) (api.AuthResponse, error)) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	m.setState(Session{State: LifecycleAuthenticating})

	resp, err := call(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		m.setState(Session{State: LifecycleFailed})
		return err
	}

	subject := resp.UserID
	role := resp.Role
	if subject == "" || role == "" {
		// Register only returns the token; recover identity from claims.
		if sub, r, ok := tokenIdentity(resp.AccessToken); ok {
			if subject == "" {
				subject = sub
			}
			if role == "" {
				role = r
			}
		}
		if role == "" {
			role = model.RoleUser
		}
	}

	creds := store.Credentials{Token: resp.AccessToken, SubjectID: subject, Role: role}
	if err := m.creds.Save(ctx, creds); err != nil {
		// The server accepted the login; losing persistence only costs the
		// next restart a fresh login.
		m.log.WithError(err).Warn("session: persisting credentials failed")
	}

	m.gw.Attach(resp.AccessToken)
	m.setState(Session{
		Token:     resp.AccessToken,
		SubjectID: subject,
		Role:      role,
		State:     LifecycleAuthenticated,
	})
	return nil
}

// Logout ends the session. The server-side revocation is best-effort: its
// failure is logged and never blocks the local logout. The local clear is
// unconditional, so an unreachable server can't leave the client stuck in
// an authenticated-looking state.
func (m *Manager) Logout(ctx context.Context) error {
	if m.Current().Authenticated() {
		if err := m.gw.Logout(ctx); err != nil {
			m.log.WithError(err).Warn("session: server-side logout failed; clearing local state anyway")
		}
	}
	return m.clearLocal(ctx)
}

// Invalidate clears the local session without a server call. Used by
// consumers after observing a 401: the token is already dead server-side.
func (m *Manager) Invalidate(ctx context.Context) error {
	return m.clearLocal(ctx)
}

func (m *Manager) clearLocal(ctx context.Context) error {
	err := m.creds.Clear(ctx)
	if err != nil {
		m.log.WithError(err).Warn("session: clearing persisted credentials failed")
	}
	m.gw.Detach()
	m.setState(Session{State: LifecycleUnauthenticated})
	return err
}

func (m *Manager) setState(s Session) {
	m.mu.Lock()
	m.sess = s
	m.mu.Unlock()
}
