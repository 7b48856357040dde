package upstream

import (
	"context"
	"fmt"
	"time"
)

// Credentials are submitted verbatim; the remote API is the only party that
// verifies them.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the session assertion returned by POST /auth/login/.
// Token is a JWT signed by the API; the role inside its claims is the only
// source of privilege, never the username.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var out LoginResponse
	if err := c.sendJSON(ctx, "POST", "/auth/login/", creds, &out); err != nil {
		return LoginResponse{}, err
	}
	if out.Token == "" {
		return LoginResponse{}, &APIError{Kind: KindServer, Message: "login response missing token"}
	}
	return out, nil
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user. Validation failures come back as
// KindValidation with the server's message.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.sendJSON(ctx, "POST", "/auth/signup/", req, nil)
}

// User is an entry in the active-users listing.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ActiveUsers lists currently active users (elevated-only data).
func (c *Client) ActiveUsers(ctx context.Context) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.getJSON(ctx, "/auth/active_users/", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Notification is a single entry from the notification feed.
type Notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifications fetches the feed. The t query parameter carries the current
// unix-millisecond clock to defeat intermediary caches.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	path := fmt.Sprintf("/notifications/?t=%d", time.Now().UnixMilli())
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
