package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that would escape the cache directory.
var ErrInvalidName = errors.New("invalid cache name")

// Store keeps raw documents on disk as one file per name. Presence of the
// file is the only hit signal; no metadata is kept beside it.
//
// Writes go to a temporary file in the same directory that is then renamed
// over the final path, so readers never observe a partial document even
// when several writers race on one name.
type Store struct {
	Dir string
	// StrictPerms restricts the directory to 0700 and files to 0600.
	StrictPerms bool
}

func (s *Store) ensureDir() error {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if s.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(s.Dir, perm); err != nil {
		return err
	}
	if s.StrictPerms {
		return os.Chmod(s.Dir, perm)
	}
	return nil
}

func (s *Store) filePerm() os.FileMode {
	if s.StrictPerms {
		return 0o600
	}
	return 0o644
}

// Path returns the file path for name.
func (s *Store) Path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

// Load returns the stored bytes for name. The boolean is false on a miss,
// which is not an error.
func (s *Store) Load(name string) ([]byte, bool, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache %s: %w", name, err)
	}
	return b, true, nil
}

// Save atomically stores data under name.
func (s *Store) Save(name string, data []byte) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.Dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := f.Chmod(s.filePerm()); err != nil {
		f.Close()
		cleanup()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		cleanup()
		return fmt.Errorf("place %s: %w", name, err)
	}
	return nil
}

func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "",
		name == "." || name == "..",
		strings.ContainsAny(name, `/\`),
		strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
