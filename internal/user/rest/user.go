// Package rest talks to the user and auth endpoints of the backend through the gateway.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/user"
)

// Doer is the gateway surface the adapter needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

type UserClient struct {
	api Doer
}

func NewUserClient(api Doer) *UserClient {
	return &UserClient{api: api}
}

// List accepts either a bare array or an object wrapping it under "users". Any other body is
// reported as a server error rather than read as an empty directory.
func (c *UserClient) List(ctx context.Context) ([]*user.User, error) {
	var raw json.RawMessage
	if err := c.api.Do(ctx, http.MethodGet, "/users", nil, &raw); err != nil {
		return nil, err
	}

	var users []*user.User
	if err := json.Unmarshal(raw, &users); err == nil {
		if users == nil {
			users = []*user.User{}
		}
		return users, nil
	}

	var wrapped struct {
		Users []*user.User `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Users != nil {
		return wrapped.Users, nil
	}
	return nil, internal.NewServerError("invalid response body", http.StatusOK)
}

func (c *UserClient) Register(ctx context.Context, dto user.RegisterUserDTO) (*user.User, error) {
	var out user.User
	if err := c.api.Do(ctx, http.MethodPost, "/users", dto, &out); err != nil {
		if internal.IsType(err, internal.ErrorTypeConflict) {
			return nil, internal.ErrEmailAlreadyExists.WithCause(err)
		}
		return nil, err
	}
	return &out, nil
}

func (c *UserClient) GetByID(ctx context.Context, id string) (*user.User, error) {
	var out user.User
	if err := c.api.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out); err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			return nil, internal.ErrUserNotFound.WithCause(err)
		}
		return nil, err
	}
	return &out, nil
}

func (c *UserClient) Login(ctx context.Context, dto user.LoginDTO) (*user.AuthResult, error) {
	var out user.AuthResult
	if err := c.api.Do(ctx, http.MethodPost, "/auth/login", dto, &out); err != nil {
		if internal.IsType(err, internal.ErrorTypeUnauthorized) {
			return nil, internal.ErrInvalidCredentials.WithCause(err)
		}
		return nil, err
	}
	return &out, nil
}

// ChangePassword maps the backend's credential rejection to an auth error. The backend answers
// it with 403 so the gateway does not treat it as an expired session.
func (c *UserClient) ChangePassword(ctx context.Context, id string, dto user.ChangePasswordDTO) error {
	err := c.api.Do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id)+"/password", dto, nil)
	if err == nil {
		return nil
	}
	if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeInvalidCredentials {
		return internal.ErrIncorrectPassword.WithCause(err)
	}
	if internal.IsType(err, internal.ErrorTypeNotFound) {
		return internal.ErrUserNotFound.WithCause(err)
	}
	return err
}
