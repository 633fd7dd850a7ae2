package credential

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pkt.systems/kryptograf"
	"pkt.systems/kryptograf/keymgmt"
	"pkt.systems/pslog"
)

const descriptorName = "dlmgr/credentials"

// Cipher encrypts credential files with a data key held in a keymgmt store.
type Cipher struct {
	root     keymgmt.RootKey
	material keymgmt.Material
}

// EnsureKeyStore creates or loads the key store at path and ensures a root key exists.
func EnsureKeyStore(path string, logger pslog.Logger) error {
	if path == "" {
		return fmt.Errorf("credential key store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		if logger != nil {
			logger.Warn("credential key store ensure failed", "err", err)
		}
		return err
	}
	store, err := keymgmt.LoadProto(path)
	if err != nil {
		if logger != nil {
			logger.Warn("credential key store ensure failed", "err", err)
		}
		return err
	}
	if _, err := store.EnsureRootKey(); err != nil {
		if logger != nil {
			logger.Warn("credential key store ensure failed", "err", err)
		}
		return err
	}
	if err := store.Commit(); err != nil {
		if logger != nil {
			logger.Warn("credential key store ensure failed", "err", err)
		}
		return err
	}
	if logger != nil {
		logger.Debug("credential key store ensure ok", "path", path)
	}
	return nil
}

// NewCipher loads (or creates) the credential data key from the key store at
// storePath.
func NewCipher(storePath string, logger pslog.Logger) (*Cipher, error) {
	if err := EnsureKeyStore(storePath, logger); err != nil {
		return nil, err
	}
	store, err := keymgmt.LoadProto(storePath)
	if err != nil {
		return nil, err
	}
	root, err := store.EnsureRootKey()
	if err != nil {
		return nil, err
	}
	material, err := store.EnsureDescriptor(descriptorName, root, []byte(descriptorName))
	if err != nil {
		if logger != nil {
			logger.Warn("credential key material load failed", "err", err)
		}
		return nil, err
	}
	if err := store.Commit(); err != nil {
		if logger != nil {
			logger.Warn("credential key material load failed", "err", err)
		}
		return nil, err
	}
	return &Cipher{root: root, material: material}, nil
}

func (c *Cipher) encryptWriter(w io.Writer) (io.WriteCloser, error) {
	return kryptograf.New(c.root).EncryptWriter(w, c.material)
}

func (c *Cipher) decryptReader(r io.Reader) (io.ReadCloser, error) {
	return kryptograf.New(c.root).DecryptReader(r, c.material)
}
