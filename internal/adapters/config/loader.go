// Package config discovers and parses qcache.yaml.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the settings file.
const (
	EnvCacheSizeLimit = "QCACHE_CACHE_SIZE_LIMIT"
	EnvCachePolicy    = "QCACHE_CACHE_POLICY"
	EnvParallelism    = "QCACHE_PARALLELISM"
)

// Loader implements ports.SettingsLoader over YAML files.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
	// Getenv reads environment overrides; os.Getenv when nil.
	Getenv func(string) string
}

// NewLoader creates a Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load walks up from cwd to the first qcache.yaml. Without one the defaults apply,
// and the returned path is empty.
func (l *Loader) Load(cwd string) (*domain.Settings, string, error) {
	path, err := l.findSettings(cwd)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		settings, err := l.Defaults()
		if err != nil {
			return nil, "", err
		}
		return settings, "", nil
	}

	settings, err := l.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return settings, path, nil
}

// Defaults returns the built-in settings with environment overrides applied.
func (l *Loader) Defaults() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	if err := l.complete(settings, false); err != nil {
		return nil, err
	}
	return settings, nil
}

// complete applies environment overrides and validates s. When neither the file nor the
// environment set a limit, the default for the resulting policy is used.
func (l *Loader) complete(s *domain.Settings, limitSet bool) error {
	envLimit, err := l.applyEnv(s)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if !limitSet && !envLimit {
		policy, _ := s.Policy()
		s.CacheSizeLimit = domain.DefaultLimit(policy)
	}
	return nil
}

// LoadFile parses the settings file at path, applies environment overrides and validates the result.
func (l *Loader) LoadFile(path string) (*domain.Settings, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	var file SettingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}

	settings := l.toSettings(&file, filepath.Dir(path))
	if err := l.complete(settings, file.CacheSizeLimit != nil); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return settings, nil
}

func (l *Loader) findSettings(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.SettingsFileName)
		info, err := l.FS.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// toSettings overlays the file on the defaults. Relative paths resolve against the settings directory.
func (l *Loader) toSettings(file *SettingsFile, dir string) *domain.Settings {
	s := domain.DefaultSettings()
	s.Storage.BadgerPath = resolvePath(dir, s.Storage.BadgerPath)

	if file.CacheSizeLimit != nil {
		s.CacheSizeLimit = *file.CacheSizeLimit
	}
	if file.CachePolicy != "" {
		s.CachePolicy = file.CachePolicy
	}
	if file.Parallelism != nil {
		s.Parallelism = *file.Parallelism
	}

	if st := file.Storage; st != nil {
		s.Storage.Backend = valueOr(st.Backend, s.Storage.Backend)
		s.Storage.Catalog = valueOr(st.Catalog, s.Storage.Catalog)
		s.Storage.DatasetPath = resolvePath(dir, st.Dataset)
		if st.BadgerPath != "" {
			s.Storage.BadgerPath = resolvePath(dir, st.BadgerPath)
		}
		s.Storage.ClickHouseDSN = st.ClickHouseDSN
		s.Storage.PostgresDSN = st.PostgresDSN
	}

	if file.Version == "" && l.Logger != nil {
		l.Logger.Warn("qcache.yaml has no version, assuming \"1\"")
	}
	return s
}

// applyEnv overlays the QCACHE_* variables and reports whether the limit was among them.
func (l *Loader) applyEnv(s *domain.Settings) (bool, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	limitSet := false
	if v := getenv(EnvCacheSizeLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return false, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "expected an integer"), EnvCacheSizeLimit, v)
		}
		s.CacheSizeLimit = n
		limitSet = true
	}
	if v := getenv(EnvCachePolicy); v != "" {
		s.CachePolicy = v
	}
	if v := getenv(EnvParallelism); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return false, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "expected an integer"), EnvParallelism, v)
		}
		s.Parallelism = n
	}
	return limitSet, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
