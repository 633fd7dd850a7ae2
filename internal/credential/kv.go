package credential

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pkt.systems/pslog"
)

// KV is a persistent string key/value store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileKV persists a JSON object to a single file, optionally encrypted.
type FileKV struct {
	mu     sync.Mutex
	path   string
	cipher *Cipher
	log    pslog.Logger
}

// FileKVOption customises a FileKV.
type FileKVOption func(*FileKV)

// WithCipher encrypts the file at rest.
func WithCipher(c *Cipher) FileKVOption {
	return func(f *FileKV) { f.cipher = c }
}

// WithLogger attaches a logger.
func WithLogger(logger pslog.Logger) FileKVOption {
	return func(f *FileKV) { f.log = logger }
}

// NewFileKV returns a file-backed store at path.
func NewFileKV(path string, opts ...FileKVOption) (*FileKV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credential file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f := &FileKV{path: path}
	for _, opt := range opts {
		opt(f)
	}
	if f.log != nil {
		f.log = f.log.With("credential_file", path)
	}
	return f, nil
}

// Path returns the backing file path.
func (f *FileKV) Path() string {
	return f.path
}

// Get implements KV.
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set implements KV.
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Delete implements KV.
func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileKV) load() (map[string]string, error) {
	values := make(map[string]string)
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if f.log != nil {
				f.log.Debug("credential load miss")
			}
			return values, nil
		}
		if f.log != nil {
			f.log.Warn("credential load failed", "err", err)
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()
	var reader io.Reader = file
	if f.cipher != nil {
		dec, err := f.cipher.decryptReader(file)
		if err != nil {
			if f.log != nil {
				f.log.Warn("credential load failed", "err", err)
			}
			return nil, err
		}
		defer func() { _ = dec.Close() }()
		reader = dec
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		if f.log != nil {
			f.log.Warn("credential load failed", "err", err)
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		if f.log != nil {
			f.log.Warn("credential load failed", "err", err)
		}
		return nil, err
	}
	return values, nil
}

func (f *FileKV) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), "credentials-*.tmp")
	if err != nil {
		if f.log != nil {
			f.log.Warn("credential save failed", "err", err)
		}
		return err
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		if f.log != nil {
			f.log.Warn("credential save failed", "err", err)
		}
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		return fail(err)
	}
	// The encrypting writer closes its destination; tmp is synced and
	// closed here instead.
	var writer io.WriteCloser = nopWriteCloser{tmp}
	if f.cipher != nil {
		writer, err = f.cipher.encryptWriter(nopWriteCloser{tmp})
		if err != nil {
			return fail(err)
		}
	}
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return fail(err)
	}
	if err := writer.Close(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		if f.log != nil {
			f.log.Warn("credential save failed", "err", err)
		}
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		if f.log != nil {
			f.log.Warn("credential save failed", "err", err)
		}
		return err
	}
	if f.log != nil {
		f.log.Debug("credential save ok", "keys", len(values), "encrypted", f.cipher != nil)
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
