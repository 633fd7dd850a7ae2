package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pkt.systems/dlmgr/schema"
)

// Login exchanges credentials for a bearer token and stores it in the
// credential store before returning.
func (c *Client) Login(ctx context.Context, username, password string) (schema.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var tok schema.Token
	err := c.do(ctx, op{
		route:     routeLogin,
		body:      strings.NewReader(form.Encode()),
		header:    http.Header{"Content-Type": {contentTypeForm}},
		fallback:  fallbackLogin,
		anonymous: true,
	}, &tok)
	if err != nil {
		c.log.Info("login failed", "username", username, "err", err)
		return schema.Token{}, err
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return schema.Token{}, &RequestError{Status: http.StatusOK, Message: fallbackLogin}
	}
	if err := c.creds.Set(tok.AccessToken); err != nil {
		return tok, &RequestError{Message: fmt.Sprintf("store credential: %v", err), Err: err}
	}
	c.log.Info("login ok", "username", username)
	return tok, nil
}

// Logout drops the held credential. No request is made.
func (c *Client) Logout() error {
	return c.creds.Clear()
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req schema.RegisterRequest) (schema.User, error) {
	var user schema.User
	err := c.call(ctx, routeRegister, nil, nil, req, &user)
	return user, err
}

// GetMe returns the identity behind the held credential.
func (c *Client) GetMe(ctx context.Context) (schema.User, error) {
	var user schema.User
	err := c.call(ctx, routeMe, nil, nil, nil, &user)
	return user, err
}

// ChangePassword changes the caller's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeChangePassword, nil, nil, schema.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, &msg)
	return msg, err
}

// ChangeUsername renames the caller.
func (c *Client) ChangeUsername(ctx context.Context, username string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeChangeUsername, nil, nil, schema.ChangeUsernameRequest{NewUsername: username}, &msg)
	return msg, err
}

// ChangeEmail changes the caller's email address.
func (c *Client) ChangeEmail(ctx context.Context, email string) (schema.User, error) {
	var user schema.User
	err := c.call(ctx, routeChangeEmail, nil, nil, schema.ChangeEmailRequest{NewEmail: email}, &user)
	return user, err
}

// SetAvatar selects a predefined avatar.
func (c *Client) SetAvatar(ctx context.Context, avatar string) (schema.User, error) {
	var user schema.User
	err := c.call(ctx, routeSetAvatar, nil, nil, schema.AvatarRequest{Avatar: avatar}, &user)
	return user, err
}

// UploadAvatar uploads an image as the caller's avatar.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (schema.User, error) {
	var user schema.User
	err := c.upload(ctx, routeUploadAvatar, filename, r, &user)
	return user, err
}

// DeleteAccount deletes the caller's account. The credential is left to the
// caller; see session.Session.DeleteAccount.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.call(ctx, routeDeleteAccount, nil, nil, nil, nil)
}
