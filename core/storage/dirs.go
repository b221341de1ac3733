// Package storage provides platform-native directory resolution with XDG support.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
)

// AppName names the per-user directories.
const AppName = "sememe"

// Dirs provides platform-native directory resolution with XDG support.
type Dirs struct {
	Config string // User configuration
	Cache  string // Regenerable cache (persisted semantic databases)
}

// ProjectDirs returns project-local directories.
type ProjectDirs struct {
	Root   string // .sememe/
	Config string // .sememe/config.yaml (committed)
	Local  string // .sememe/local/ (gitignored)
}

var (
	globalDirs     *Dirs
	globalDirsOnce sync.Once
	globalDirsErr  error
)

// ResolveDirs returns platform-appropriate directories.
// Results are cached after first call.
func ResolveDirs() (*Dirs, error) {
	globalDirsOnce.Do(func() {
		globalDirs, globalDirsErr = resolveDirsImpl()
	})
	return globalDirs, globalDirsErr
}

func resolveDirsImpl() (*Dirs, error) {
	dirs := &Dirs{
		Config: resolveDir("XDG_CONFIG_HOME", platformConfigDefault()),
		Cache:  resolveDir("XDG_CACHE_HOME", platformCacheDefault()),
	}
	return dirs, nil
}

func resolveDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, AppName)
	}
	return fallback
}

// ResolveProjectDirs returns project-local directories for the given project root.
func ResolveProjectDirs(projectRoot string) *ProjectDirs {
	root := filepath.Join(projectRoot, "."+AppName)
	return &ProjectDirs{
		Root:   root,
		Config: filepath.Join(root, "config.yaml"),
		Local:  filepath.Join(root, "local"),
	}
}

// ResourceHash generates a consistent hash for a set of resource paths, so
// databases built from different resources get separate cache directories.
func ResourceHash(paths ...string) string {
	h := sha256.New()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		h.Write([]byte(abs))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8]) // 16 chars
}

// EnsureDir creates a directory with the specified permissions if it doesn't exist.
// Uses 0700 when perm is zero.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0700
	}
	return os.MkdirAll(path, perm)
}

// ConfigDir returns the config subdirectory path.
func (d *Dirs) ConfigDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Config}, subpath...)...)
}

// CacheDir returns the cache subdirectory path.
func (d *Dirs) CacheDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Cache}, subpath...)...)
}

// DatabaseCacheDir returns the cache directory for the database built from
// the given hierarchy and glossary resources.
func (d *Dirs) DatabaseCacheDir(hierarchyPath, glossaryPath string) string {
	return d.CacheDir("db", ResourceHash(hierarchyPath, glossaryPath))
}
