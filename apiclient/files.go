package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"pkt.systems/dlmgr/schema"
)

// DefaultAdminPageSize is the page size used when AdminFilesQuery.Limit is zero.
const DefaultAdminPageSize = 50

// AdminFilesQuery pages through the admin file browser.
type AdminFilesQuery struct {
	Path   string
	Offset int
	Limit  int
}

func pathQuery(path string) url.Values {
	if path == "" {
		return nil
	}
	return url.Values{"path": {path}}
}

func renameQuery(oldPath, newPath string) url.Values {
	return url.Values{"old_path": {oldPath}, "new_path": {newPath}}
}

// ListFiles lists the caller's files below path ("" for the root).
func (c *Client) ListFiles(ctx context.Context, path string) ([]schema.FileEntry, error) {
	var files []schema.FileEntry
	err := c.call(ctx, routeListFiles, nil, pathQuery(path), nil, &files)
	return files, err
}

// DeleteFile deletes one of the caller's files or directories.
func (c *Client) DeleteFile(ctx context.Context, path string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeDeleteFile, []string{path}, nil, nil, &msg)
	return msg, err
}

// RenameFile moves one of the caller's files.
func (c *Client) RenameFile(ctx context.Context, oldPath, newPath string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeRenameFile, nil, renameQuery(oldPath, newPath), nil, &msg)
	return msg, err
}

// AdminListFiles pages through every user's files. Admin only.
func (c *Client) AdminListFiles(ctx context.Context, q AdminFilesQuery) (schema.AdminFilePage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultAdminPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	query := url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}
	if q.Path != "" {
		query.Set("path", q.Path)
	}
	var page schema.AdminFilePage
	err := c.call(ctx, routeAdminListFiles, nil, query, nil, &page)
	return page, err
}

// AdminDeleteFile deletes any file. Admin only.
func (c *Client) AdminDeleteFile(ctx context.Context, path string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeAdminDeleteFile, []string{path}, nil, nil, &msg)
	return msg, err
}

// AdminRenameFile moves any file. Admin only.
func (c *Client) AdminRenameFile(ctx context.Context, oldPath, newPath string) (schema.Message, error) {
	var msg schema.Message
	err := c.call(ctx, routeAdminRenameFile, nil, renameQuery(oldPath, newPath), nil, &msg)
	return msg, err
}
