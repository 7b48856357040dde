// Package session owns the authenticated/elevated state of the dashboard.
//
// The original client kept loose flags in browser storage (authenticated,
// role, display name, dark mode) with no expiry. Here that state is an
// explicit session object behind an opaque token with a TTL; the role comes
// from the server-asserted claim in the login token and nothing else.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"call-dashboard/internal/upstream"

	"github.com/google/uuid"
)

var ErrBadCredentials = errors.New("session: login rejected")

// Session is the server-side state for one logged-in user.
type Session struct {
	Token       string    `json:"token"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Elevated    bool      `json:"elevated"`
	DarkMode    bool      `json:"dark_mode"`
	CreatedAt   time.Time `json:"created_at"`

	// UpstreamToken is the bearer token attached to every remote API call
	// made on behalf of this session.
	UpstreamToken string `json:"upstream_token"`
}

// Authenticator is the slice of the upstream client the gate depends on.
type Authenticator interface {
	Login(ctx context.Context, creds upstream.Credentials) (upstream.LoginResponse, error)
}

// Gate tracks login state and gates access to protected views. Sessions move
// LoggedOut -> LoggedIn{standard|elevated} on a verified login and back to
// LoggedOut on explicit logout or any authorization failure from the API.
type Gate struct {
	api      Authenticator
	verifier *Verifier
	store    Store
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewGate(api Authenticator, verifier *Verifier, store Store, ttl time.Duration, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Gate{api: api, verifier: verifier, store: store, ttl: ttl, log: log, now: time.Now}
}

// Login forwards credentials to the remote API, verifies the returned token,
// and creates a session whose privilege level is the verified role claim.
func (g *Gate) Login(ctx context.Context, username, password string) (Session, error) {
	resp, err := g.api.Login(ctx, upstream.Credentials{Username: username, Password: password})
	if err != nil {
		if upstream.IsAuth(err) || upstream.IsForbidden(err) {
			return Session{}, ErrBadCredentials
		}
		return Session{}, err
	}

	claims, err := g.verifier.Verify(resp.Token, g.now())
	if err != nil {
		g.log.Warn("login token failed verification", "username", username, "err", err)
		return Session{}, ErrBadCredentials
	}

	display := claims.DisplayName
	if display == "" {
		display = claims.Username
	}
	s := Session{
		Token:         uuid.NewString(),
		UserID:        claims.UserID,
		Username:      claims.Username,
		DisplayName:   display,
		Elevated:      claims.Role == RoleAdmin,
		CreatedAt:     g.now(),
		UpstreamToken: resp.Token,
	}
	if err := g.store.Save(ctx, s, g.ttl); err != nil {
		return Session{}, err
	}
	g.log.Info("session created", "user_id", s.UserID, "elevated", s.Elevated)
	return s, nil
}

// Get resolves an opaque token to its live session.
func (g *Gate) Get(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	return g.store.Get(ctx, token)
}

// Logout revokes a session explicitly.
func (g *Gate) Logout(ctx context.Context, token string) error {
	return g.store.Delete(ctx, token)
}

// Revoke force-terminates a session after the remote API rejected its
// credentials (a 401 from any call transitions the gate to logged-out).
func (g *Gate) Revoke(ctx context.Context, token string) {
	if err := g.store.Delete(ctx, token); err != nil {
		g.log.Warn("session revoke failed", "err", err)
	}
}

// SetDarkMode persists the display preference on the session object.
func (g *Gate) SetDarkMode(ctx context.Context, token string, dark bool) (Session, error) {
	s, err := g.store.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	s.DarkMode = dark
	remaining := g.ttl - g.now().Sub(s.CreatedAt)
	if remaining <= 0 {
		return Session{}, ErrNotFound
	}
	if err := g.store.Save(ctx, s, remaining); err != nil {
		return Session{}, err
	}
	return s, nil
}
