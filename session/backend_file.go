package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-school-session/internal/errors"
)

var _ Backend = (*FileBackend)(nil)

// FileBackend keeps the session in one JSON document on disk. Writes go to a
// temporary file that is renamed over the old one, so a crash leaves either
// the previous or the new session, never a mix.
type FileBackend struct {
	path   string
	sealer *Sealer
	mu     sync.Mutex
}

// FileOption defines a function type to modify the FileBackend instance.
type FileOption func(*FileBackend)

// WithSealKey encrypts the file at rest with a key derived from passphrase.
func WithSealKey(passphrase string) FileOption {
	return func(b *FileBackend) {
		if passphrase != "" {
			b.sealer = NewSealer(passphrase)
		}
	}
}

func NewFileBackend(path string, options ...FileOption) *FileBackend {
	b := &FileBackend{path: path}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) GetMany(_ context.Context, keys []string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return nil, err
	}
	found := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			found[k] = v
		}
	}
	return found, nil
}

func (b *FileBackend) Apply(_ context.Context, set map[string]string, del []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil && !errors.Is(err, errors.ErrCorruptSession) {
		return err
	}
	if values == nil {
		// A corrupt file is replaced wholesale
		values = make(map[string]string)
	}

	for k, v := range set {
		values[k] = v
	}
	for _, k := range del {
		delete(values, k)
	}

	if len(values) == 0 {
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "[FileBackend.Apply] remove %s", b.path)
		}
		return nil
	}
	return b.write(values)
}

func (b *FileBackend) read() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[FileBackend.read] %s", b.path)
	}

	if b.sealer != nil {
		if data, err = b.sealer.Open(data); err != nil {
			return nil, errors.Wrapf(errors.ErrCorruptSession, "[FileBackend.read] open sealed file: %v", err)
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[FileBackend.read] decode: %v", err)
	}
	return values, nil
}

func (b *FileBackend) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "[FileBackend.write] encode")
	}
	if b.sealer != nil {
		if data, err = b.sealer.Seal(data); err != nil {
			return errors.Wrapf(err, "[FileBackend.write] seal")
		}
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "[FileBackend.write] mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrapf(err, "[FileBackend.write] create temp")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "[FileBackend.write] chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "[FileBackend.write] write")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "[FileBackend.write] sync")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "[FileBackend.write] close")
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		cleanup()
		return errors.Wrapf(err, "[FileBackend.write] rename")
	}
	return nil
}
