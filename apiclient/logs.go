package apiclient

import (
	"context"
	"encoding/json"
	"strings"
)

// UserLogs returns the caller's download log.
func (c *Client) UserLogs(ctx context.Context) (string, error) {
	return c.logText(ctx, routeUserLogs, nil)
}

// BackendLogs returns the backend application log. Admin only.
func (c *Client) BackendLogs(ctx context.Context) (string, error) {
	return c.logText(ctx, routeBackendLogs, nil)
}

// ServerLogs returns the web server log. Admin only.
func (c *Client) ServerLogs(ctx context.Context) (string, error) {
	return c.logText(ctx, routeServerLogs, nil)
}

// UserLogsByName returns another user's download log. Admin only.
func (c *Client) UserLogsByName(ctx context.Context, username string) (string, error) {
	return c.logText(ctx, routeLogsByUser, []string{username})
}

// logText decodes a JSON string body. Other JSON values are returned as
// their raw text.
func (c *Client) logText(ctx context.Context, route Route, args []string) (string, error) {
	var raw json.RawMessage
	if err := c.call(ctx, route, args, nil, nil, &raw); err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	return strings.TrimSpace(string(raw)), nil
}
