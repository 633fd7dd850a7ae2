package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.bug.st/downloader/v2"
)

// Saver chooses where a downloaded file is written.
type Saver interface {
	SavePath(filename string) (string, error)
}

// DirSaver writes downloads into Dir under their own base name.
type DirSaver struct {
	Dir string
}

// SavePath implements Saver.
func (s DirSaver) SavePath(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(strings.TrimSpace(filename)))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid download file name %q", filename)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DownloadAdminFile fetches a file from the admin file browser and writes it
// to the location chosen by the client's Saver under filename (the remote
// base name when empty). It returns the local path. The body is written to a
// temporary file next to the destination and renamed over it only once the
// transfer completes, so a failed download leaves an existing file untouched.
func (c *Client) DownloadAdminFile(ctx context.Context, remotePath, filename string) (string, error) {
	endpoint, err := routeAdminDownloadFile.Expand(remotePath)
	if err != nil {
		return "", &RequestError{Message: err.Error(), Err: err}
	}
	if strings.TrimSpace(filename) == "" {
		filename = path.Base(remotePath)
	}
	dest, err := c.saver.SavePath(filename)
	if err != nil {
		return "", &RequestError{Message: err.Error(), Err: err}
	}
	part, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*.part")
	if err != nil {
		return "", &RequestError{Message: fallbackDownload, Err: err}
	}
	partPath := part.Name()
	if err := part.Close(); err != nil {
		_ = os.Remove(partPath)
		return "", &RequestError{Message: fallbackDownload, Err: err}
	}
	headers := http.Header{"User-Agent": {c.ua}}
	if tok, err := c.creds.Token(); err == nil {
		headers.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	}
	httpClient := *c.stream
	httpClient.Transport = headerTransport{base: c.stream.Transport, headers: headers}

	log := c.log.With("remote_path", remotePath, "dest", dest)
	d, err := downloader.DownloadWithConfigAndContext(ctx, partPath, c.base+endpoint, downloader.Config{
		HttpClient: httpClient,
	}, downloader.NoResume)
	if err != nil {
		_ = os.Remove(partPath)
		log.Warn("admin file download failed", "err", err)
		return "", &RequestError{Message: fallbackDownload, Err: err}
	}
	if status := d.Resp.StatusCode; status < 200 || status > 299 {
		body, _ := io.ReadAll(io.LimitReader(d.Resp.Body, maxErrorBody))
		cleanupErr := errors.Join(d.Close(), os.Remove(partPath))
		log.Warn("admin file download failed", "status", status)
		return "", &RequestError{Status: status, Message: errorMessage(body, fallbackDownload), Err: cleanupErr}
	}
	if err := d.Run(); err != nil {
		cleanupErr := os.Remove(partPath)
		log.Warn("admin file download failed", "err", err)
		return "", &RequestError{Status: http.StatusOK, Message: fallbackDownload, Err: errors.Join(err, cleanupErr)}
	}
	// CreateTemp leaves the file private.
	if err := os.Chmod(partPath, 0o644); err != nil {
		_ = os.Remove(partPath)
		log.Warn("admin file download failed", "err", err)
		return "", &RequestError{Status: http.StatusOK, Message: fallbackDownload, Err: err}
	}
	if err := os.Rename(partPath, dest); err != nil {
		_ = os.Remove(partPath)
		log.Warn("admin file download failed", "err", err)
		return "", &RequestError{Status: http.StatusOK, Message: fallbackDownload, Err: err}
	}
	log.Info("admin file download ok", "bytes", d.Completed())
	return dest, nil
}

// headerTransport sets fixed headers on every request it forwards.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header[k] = v
	}
	return base.RoundTrip(req)
}
