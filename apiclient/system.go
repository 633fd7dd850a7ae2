package apiclient

import (
	"context"
	"errors"

	"pkt.systems/dlmgr/schema"
)

// SystemCheck reports downloader tool availability.
func (c *Client) SystemCheck(ctx context.Context) (schema.SystemCheck, error) {
	var out schema.SystemCheck
	err := c.call(ctx, routeSystemCheck, nil, nil, nil, &out)
	return out, err
}

// Version returns the backend version.
func (c *Client) Version(ctx context.Context) (schema.Version, error) {
	var out schema.Version
	err := c.call(ctx, routeVersion, nil, nil, nil, &out)
	return out, err
}

// AppInfo returns the deployment's title and description.
func (c *Client) AppInfo(ctx context.Context) (schema.AppInfo, error) {
	var out schema.AppInfo
	err := c.call(ctx, routeAppInfo, nil, nil, nil, &out)
	return out, err
}

// ServerInfo returns host resource figures. Admin only.
func (c *Client) ServerInfo(ctx context.Context) (schema.ServerInfo, error) {
	var out schema.ServerInfo
	err := c.call(ctx, routeServerInfo, nil, nil, nil, &out)
	return out, err
}

// EnvConfig returns the server's editable environment. Admin only.
func (c *Client) EnvConfig(ctx context.Context) (schema.EnvConfig, error) {
	var out schema.EnvConfig
	err := c.call(ctx, routeEnvConfig, nil, nil, nil, &out)
	return out, err
}

// UpdateEnvConfig replaces entries of the server's environment. Admin only.
func (c *Client) UpdateEnvConfig(ctx context.Context, values schema.EnvConfig) (schema.EnvConfig, error) {
	var out schema.EnvConfig
	err := c.call(ctx, routeUpdateEnv, nil, nil, values, &out)
	return out, err
}

// UpgradeDownloader upgrades the server's downloader tool. Admin only.
func (c *Client) UpgradeDownloader(ctx context.Context) (schema.ActionResult, error) {
	return c.action(ctx, routeUpgrade)
}

// RestartServer restarts the backend. Admin only.
func (c *Client) RestartServer(ctx context.Context) (schema.ActionResult, error) {
	return c.action(ctx, routeRestartServer)
}

// ShutdownServer stops the backend. Admin only.
func (c *Client) ShutdownServer(ctx context.Context) (schema.ActionResult, error) {
	return c.action(ctx, routeShutdownServer)
}

func (c *Client) action(ctx context.Context, route Route) (schema.ActionResult, error) {
	var out schema.ActionResult
	err := c.call(ctx, route, nil, nil, nil, &out)
	return out, err
}

// HealthCheck checks the backend without credentials. Any failure is
// reported as "Server not available".
func (c *Client) HealthCheck(ctx context.Context) (schema.Health, error) {
	var out schema.Health
	err := c.do(ctx, op{route: routeHealth, anonymous: true}, &out)
	if err != nil {
		status := 0
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			status = reqErr.Status
		}
		return schema.Health{}, &RequestError{Status: status, Message: messageNoServer, Err: err}
	}
	return out, nil
}
