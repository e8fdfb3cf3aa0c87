// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// AUTHENTICATION
// =============================================================================

// TokenResponse is the login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The endpoint takes a
// form-encoded body (OAuth2 password flow), not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp TokenResponse
	if err := c.doForm(ctx, "/api/auth/token", form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access token")
	}
	return &resp, nil
}

// RegisterRequest is the self-service registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. No session is needed; registration is
// how the first session comes to exist.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	var user model.User
	if err := c.doPublicJSON(ctx, http.MethodPost, "/api/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// =============================================================================
// PROFILE
// =============================================================================

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateInfoRequest is the profile-edit payload.
type UpdateInfoRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UpdateMyInfo updates the authenticated user's username/email.
func (c *Client) UpdateMyInfo(ctx context.Context, req UpdateInfoRequest) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPut, "/api/auth/users/me/info", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePasswordRequest is the password-change payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangeMyPassword changes the authenticated user's password.
func (c *Client) ChangeMyPassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/api/auth/users/me/password", req, nil)
}

// RequestPasswordReset starts the email reset flow for an account. Both
// reset calls are unauthenticated; a user who needs them is locked out.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doPublicJSON(ctx, http.MethodPost, "/api/auth/reset-password", body, nil)
}

// ConfirmPasswordReset completes the reset flow with the emailed token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.doPublicJSON(ctx, http.MethodPost, "/api/auth/reset-password/confirm", body, nil)
}

// =============================================================================
// ADMIN: USER MANAGEMENT
// =============================================================================

// ListUsers returns all users (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser creates an account on behalf of a user (admin only).
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/admin/create_user", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserRequest is the admin user-edit payload.
type UpdateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	IsAdmin  *bool  `json:"is_admin,omitempty"`
}

// UpdateUser edits an account (admin only).
func (c *Client) UpdateUser(ctx context.Context, id int, req UpdateUserRequest) (*model.User, error) {
	var user model.User
	path := fmt.Sprintf("/api/auth/users/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account (admin only).
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/auth/users/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}
