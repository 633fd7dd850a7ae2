package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

const uploadField = "file"

// upload posts r as the multipart field "file". The JSON content type is
// replaced by the multipart one carrying the boundary.
func (c *Client) upload(ctx context.Context, route Route, filename string, r io.Reader, out any) error {
	if r == nil {
		return &RequestError{Message: "upload: no content"}
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = uploadField
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(uploadField, name)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("upload: %v", err), Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return &RequestError{Message: fmt.Sprintf("upload: read %s: %v", name, err), Err: err}
	}
	if err := writer.Close(); err != nil {
		return &RequestError{Message: fmt.Sprintf("upload: %v", err), Err: err}
	}
	return c.do(ctx, op{
		route:    route,
		body:     &buf,
		header:   http.Header{"Content-Type": {writer.FormDataContentType()}},
		fallback: fallbackUpload,
	}, out)
}
