package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"moviebook-cli/model"
)

// ErrUserNotFound is returned by LoginByEmail when no account matches.
var ErrUserNotFound = errors.New("user not found; check your email or register")

// CreateUser registers a user. Guest identities created during checkout go
// through here too.
func (c *Client) CreateUser(ctx context.Context, dto model.UserDTO) (model.User, error) {
	var user model.User
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoint("/users"), dto, &user); err != nil {
		return model.User{}, err
	}
	if user.Id == "" {
		return model.User{}, errors.New("user created without id")
	}
	return user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.getJSON(ctx, c.endpoint("/users"), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return model.User{}, errors.New("user id is required")
	}
	var user model.User
	if err := c.getJSON(ctx, c.endpoint("/users/%s", url.PathEscape(userID)), &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, dto model.UserDTO) (model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return model.User{}, errors.New("user id is required")
	}
	var user model.User
	if err := c.sendJSON(ctx, http.MethodPut, c.endpoint("/users/%s", url.PathEscape(userID)), dto, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("/users/%s", url.PathEscape(userID)), nil, nil)
}

// LoginByEmail finds the account with the given email. The backend has no
// credential check; the password is never sent.
func (c *Client) LoginByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.User{}, errors.New("email is required")
	}
	users, err := c.ListUsers(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return model.User{}, ErrUserNotFound
}
