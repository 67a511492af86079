package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/ipwatch/internal/errors"
)

// Store reads and writes a single document file. It holds no cached copy:
// every call goes back to disk, and nothing guards the window between a
// Load and the Save that follows it, so two processes editing the same file
// can lose each other's writes.
type Store struct {
	path     string
	defaults Value
}

// NewStore returns a Store for the file at path. defaults is written when
// the file does not exist yet.
func NewStore(path string, defaults Value) *Store {
	return &Store{path: path, defaults: defaults}
}

// Path returns the file the store is bound to.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the document. A missing file is initialized with the
// defaults first. An empty file yields an empty object: it is a placeholder,
// not a corrupt document.
func (s *Store) Load() (Value, error) {
	doc, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return s.Initialize()
	}
	return doc, err
}

func (s *Store) read() (Value, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Value{}, err
		}
		return Value{}, errs.IO("read", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return EmptyObject(), nil
	}
	doc, err := Parse(data)
	if err != nil {
		return Value{}, errs.Parse(s.path, err)
	}
	return doc, nil
}

// Initialize creates the parent directories, writes the default document and
// reads it back.
func (s *Store) Initialize() (Value, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Value{}, errs.IO("create directory", filepath.Dir(s.path), err)
	}
	if err := s.Save(s.defaults); err != nil {
		return Value{}, err
	}
	doc, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return Value{}, errs.IO("read", s.path, err)
	}
	return doc, err
}

// Save overwrites the file with doc. The content goes to a temporary file in
// the same directory which is synced and renamed over the target, so readers
// see either the old or the new document. When Save fails the file on disk
// is unchanged while the caller's copy has already moved on.
func (s *Store) Save(doc Value) error {
	data, err := Encode(doc)
	if err != nil {
		return errs.IO("encode", s.path, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errs.IO("write", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.IO("write", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errs.IO("sync", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return errs.IO("write", s.path, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errs.IO("chmod", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errs.IO("rename", s.path, err)
	}
	return nil
}

// SetKey loads the document, sets the top-level key and saves it.
func (s *Store) SetKey(key string, value Value) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	updated, ok := doc.With(key, value)
	if !ok {
		return errs.InvalidPath(key, "document root is %s, not an object", doc.Kind())
	}
	return s.Save(updated)
}

// SetPath loads the document, applies value at path and saves it.
func (s *Store) SetPath(path string, value Value) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	updated, err := ApplyPath(doc, path, value)
	if err != nil {
		return err
	}
	return s.Save(updated)
}

// SetWhole replaces the document with doc.
func (s *Store) SetWhole(doc Value) error {
	return s.Save(doc)
}

// Reset overwrites the document with the defaults.
func (s *Store) Reset() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errs.IO("create directory", filepath.Dir(s.path), err)
	}
	if err := s.Save(s.defaults); err != nil {
		return fmt.Errorf("failed to reset %s: %w", s.path, err)
	}
	return nil
}
