package domain

import "path/filepath"

const (
	// StateDirName is the name of the directory holding qcache's local state.
	StateDirName = ".qcache"

	// StoreDirName is the name of the embedded store directory.
	StoreDirName = "store"

	// SettingsFileName is the name of the settings file discovered from the working directory upwards.
	SettingsFileName = "qcache.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultStatePath returns the default root directory for qcache state.
func DefaultStatePath() string {
	return StateDirName
}

// DefaultStorePath returns the default path of the embedded store.
// It joins .qcache and store.
func DefaultStorePath() string {
	return filepath.Join(StateDirName, StoreDirName)
}
