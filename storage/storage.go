// Package storage provides the content-addressed byte-blob abstraction
// shared by every leaf and internal node of an index, and its filesystem
// back-end. The interface is deliberately small so an SBT can hold an
// abstract handle instead of a concrete file.
package storage

import (
	"os"
	"path/filepath"

	"github.com/sourmash-go/sourmash/errs"
)

// Storage maps string keys (filenames) to opaque byte blobs.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) (string, error)
}

// Info is the {backend, args} descriptor an SBT JSON file carries,
// sufficient to reconstruct the correct Storage back-end on load.
type Info struct {
	Backend string            `json:"backend"`
	Args    map[string]string `json:"args"`
}

// FSStorage resolves keys relative to a base directory on the local
// filesystem.
type FSStorage struct {
	base string
}

// NewFSStorage returns a Storage backed by the local filesystem, rooted at
// base.
func NewFSStorage(base string) *FSStorage {
	return &FSStorage{base: base}
}

// Base returns the storage's root directory.
func (s *FSStorage) Base() string { return s.base }

func (s *FSStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.base, key))
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "loading %q", key)
	}
	return data, nil
}

func (s *FSStorage) Save(key string, data []byte) (string, error) {
	path := filepath.Join(s.base, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errs.Wrap(errs.Io, err, "creating directory for %q", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errs.Wrap(errs.Io, err, "saving %q", key)
	}
	return key, nil
}

// FromInfo constructs the Storage back-end described by info, resolved
// relative to baseDir (conventionally the directory containing the SBT
// descriptor file). Only the filesystem backend is implemented; other
// backends are not supported, and this function reports an error for any
// other Info.Backend value.
func FromInfo(info Info, baseDir string) (Storage, error) {
	switch info.Backend {
	case "", "FSStorage", "filesystem":
		path := info.Args["path"]
		return NewFSStorage(filepath.Join(baseDir, path)), nil
	default:
		return nil, errs.New(errs.Internal, "unsupported storage backend %q", info.Backend)
	}
}
