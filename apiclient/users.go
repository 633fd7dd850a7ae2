package apiclient

import (
	"context"
	"strconv"

	"pkt.systems/dlmgr/schema"
)

func idArg[T ~int64](id T) []string {
	return []string{strconv.FormatInt(int64(id), 10)}
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]schema.User, error) {
	var users []schema.User
	err := c.call(ctx, routeListUsers, nil, nil, nil, &users)
	return users, err
}

// SyncUsers reconciles accounts with the backend's user directories. Admin only.
func (c *Client) SyncUsers(ctx context.Context) ([]schema.User, error) {
	var users []schema.User
	err := c.call(ctx, routeSyncUsers, nil, nil, nil, &users)
	return users, err
}

// CreateUser creates an account. Admin only.
func (c *Client) CreateUser(ctx context.Context, req schema.RegisterRequest) (schema.User, error) {
	var user schema.User
	err := c.call(ctx, routeCreateUser, nil, nil, req, &user)
	return user, err
}

// UpdateUser applies a partial update to an account. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id schema.UserID, update schema.UserUpdate) (schema.User, error) {
	var user schema.User
	err := c.call(ctx, routeUpdateUser, idArg(id), nil, update, &user)
	return user, err
}

// SetUserPassword sets another account's password. Admin only.
func (c *Client) SetUserPassword(ctx context.Context, id schema.UserID, password string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeSetUserPassword, idArg(id), nil, schema.SetPasswordRequest{NewPassword: password}, &msg)
	return msg, err
}

// DeleteUser deletes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id schema.UserID) error {
	return c.call(ctx, routeDeleteUser, idArg(id), nil, nil, nil)
}
