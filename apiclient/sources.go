package apiclient

import (
	"context"
	"io"

	"pkt.systems/dlmgr/schema"
)

// namedText is a CRUD family of named text documents.
type namedText struct {
	list, get, save, remove Route
}

var (
	configRoutes = namedText{routeListConfigs, routeGetConfig, routeSaveConfig, routeDeleteConfig}
	urlRoutes    = namedText{routeListURLs, routeGetURL, routeSaveURL, routeDeleteURL}
)

func (c *Client) listNamed(ctx context.Context, family namedText) ([]schema.NamedItem, error) {
	var items []schema.NamedItem
	err := c.call(ctx, family.list, nil, nil, nil, &items)
	return items, err
}

func (c *Client) getNamed(ctx context.Context, family namedText, name string) (schema.Content, error) {
	var content schema.Content
	err := c.call(ctx, family.get, []string{name}, nil, nil, &content)
	return content, err
}

func (c *Client) saveNamed(ctx context.Context, family namedText, name, content string) error {
	return c.call(ctx, family.save, []string{name}, nil, schema.Content{Content: content}, nil)
}

func (c *Client) deleteNamed(ctx context.Context, family namedText, name string) error {
	return c.call(ctx, family.remove, []string{name}, nil, nil, nil)
}

// ListConfigs returns the names of the caller's downloader configs.
func (c *Client) ListConfigs(ctx context.Context) ([]schema.NamedItem, error) {
	return c.listNamed(ctx, configRoutes)
}

// GetConfig returns a config's text.
func (c *Client) GetConfig(ctx context.Context, name string) (schema.Content, error) {
	return c.getNamed(ctx, configRoutes, name)
}

// SaveConfig creates or replaces a config.
func (c *Client) SaveConfig(ctx context.Context, name, content string) error {
	return c.saveNamed(ctx, configRoutes, name, content)
}

// DeleteConfig removes a config.
func (c *Client) DeleteConfig(ctx context.Context, name string) error {
	return c.deleteNamed(ctx, configRoutes, name)
}

// UploadCookies uploads a cookies file for the downloader.
func (c *Client) UploadCookies(ctx context.Context, filename string, r io.Reader) (schema.Message, error) {
	var msg schema.Message
	err := c.upload(ctx, routeUploadCookie, filename, r, &msg)
	return msg, err
}

// ResetArchive clears the downloader's record of fetched items.
func (c *Client) ResetArchive(ctx context.Context) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeResetArchive, nil, nil, nil, &msg)
	return msg, err
}

// ListURLSources returns the names of the caller's URL lists.
func (c *Client) ListURLSources(ctx context.Context) ([]schema.NamedItem, error) {
	return c.listNamed(ctx, urlRoutes)
}

// GetURLSource returns a URL list's text.
func (c *Client) GetURLSource(ctx context.Context, name string) (schema.Content, error) {
	return c.getNamed(ctx, urlRoutes, name)
}

// SaveURLSource creates or replaces a URL list.
func (c *Client) SaveURLSource(ctx context.Context, name, content string) error {
	return c.saveNamed(ctx, urlRoutes, name, content)
}

// DeleteURLSource removes a URL list.
func (c *Client) DeleteURLSource(ctx context.Context, name string) error {
	return c.deleteNamed(ctx, urlRoutes, name)
}
