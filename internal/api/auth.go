package api

import (
	"context"
	"net/url"

	"meridian/internal/rest"
)

// AuthAPI wraps the /auth endpoint group. Login establishes the cookie
// session on the shared rest.Client; every other module rides on it.
type AuthAPI struct {
	c *rest.Client
}

// NewAuthAPI creates the auth module on the given client.
func NewAuthAPI(c *rest.Client) *AuthAPI {
	return &AuthAPI{c: c}
}

// Login authenticates with form-encoded credentials. The backend sets the
// session cookies on success.
func (a *AuthAPI) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	return a.c.PostForm(ctx, "/auth/login", form, nil)
}

// Me returns the currently authenticated user.
func (a *AuthAPI) Me(ctx context.Context) (*User, error) {
	var user User
	if err := a.c.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the server-side session.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.Post(ctx, "/auth/logout", nil, nil)
}

// Refresh explicitly renews the session tokens. The rest.Client also calls
// this endpoint transparently on 401; an explicit call is only needed by
// long-lived watch loops that want to renew ahead of expiry.
func (a *AuthAPI) Refresh(ctx context.Context) error {
	return a.c.Post(ctx, "/auth/refresh", nil, nil)
}
