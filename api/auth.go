package api

import (
	"context"
	"net/http"

	"shopfront.io/storefront/models"
)

type userEnvelope struct {
	User *models.User `json:"user"`
}

// SignupParams carries the registration form.
type SignupParams struct {
	Email                string `json:"email"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login authenticates with email and password. On success the session
// cookie lands in the shared jar and the signed-in user is returned.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out userEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return models.User{}, err
	}
	if out.User == nil {
		return models.User{}, &StatusError{Code: http.StatusOK, Body: "login response carried no user"}
	}
	return *out.User, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/auth/logout", nil, nil)
}

// CurrentUser restores the session from the cookie jar. The second return
// is false when no session is active.
func (c *Client) CurrentUser(ctx context.Context) (models.User, bool, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		if IsUnauthorized(err) {
			return models.User{}, false, nil
		}
		return models.User{}, false, err
	}
	if out.User == nil {
		return models.User{}, false, nil
	}
	return *out.User, true, nil
}

// Signup registers a new account. The API expects the form nested under a
// "user" key.
func (c *Client) Signup(ctx context.Context, params SignupParams) error {
	in := struct {
		User SignupParams `json:"user"`
	}{User: params}
	return c.do(ctx, http.MethodPost, "/v1/users", in, nil)
}
