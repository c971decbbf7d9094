package config

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the read access the loader needs to discover and read settings files.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the local disk.
type OSFS struct{}

// NewOSFS creates an OSFS.
func NewOSFS() *OSFS { return &OSFS{} }

func (*OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (*OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- settings paths come from upward discovery
	return os.ReadFile(path)
}

// MapFSAdapter serves FS as though it were mounted at the absolute path Root.
type MapFSAdapter struct {
	FS   fs.FS
	Root string
}

// NewMapFSAdapter mounts fsys at root.
func NewMapFSAdapter(root string, fsys fs.FS) *MapFSAdapter {
	return &MapFSAdapter{FS: fsys, Root: root}
}

func (m *MapFSAdapter) Stat(path string) (fs.FileInfo, error) {
	rel, err := m.rel(path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(m.FS, rel)
}

func (m *MapFSAdapter) ReadFile(path string) ([]byte, error) {
	rel, err := m.rel(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(m.FS, rel)
}

// rel maps path below Root to an fs.FS name. Paths outside Root do not exist.
func (m *MapFSAdapter) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(m.Root, path)
	if err != nil || !fs.ValidPath(filepath.ToSlash(rel)) {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return filepath.ToSlash(rel), nil
}
