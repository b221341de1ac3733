package sememe

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/adalundhe/sememe/core/storage"
)

// Cache blob file names.
const (
	GlossaryFile  = "glossary.bin"
	HierarchyFile = "hierarchy.bin"
	SememesFile   = "sememes.bin"
	ParentsFile   = "parents.bin"
)

var errCacheAbsent = errors.New("cache blob missing")

var blobFiles = map[BlobKind]string{
	BlobGlossary:  GlossaryFile,
	BlobHierarchy: HierarchyFile,
	BlobSememes:   SememesFile,
	BlobParents:   ParentsFile,
}

// Cache persists a Database as four independent blobs in one directory.
// All blobs written by one Save share a build ID; Load rejects a directory
// whose blobs come from different saves.
type Cache struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, logger: logger}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Save writes db to the cache directory. Each blob is written to a temp
// file first and renamed into place once all four are on disk.
func (c *Cache) Save(db *Database) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := storage.EnsureDir(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}

	build := uuid.New()
	payloads := []struct {
		kind    BlobKind
		payload []byte
	}{
		{BlobGlossary, encodeGlossary(db.glossary)},
		{BlobHierarchy, encodeHierarchy(db.hierarchy)},
		{BlobSememes, encodeSememes(db.registry)},
		{BlobParents, encodeParents(db.parents)},
	}

	temps := make(map[BlobKind]string, len(payloads))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}

	for _, p := range payloads {
		data, err := encodeBlob(p.kind, build, p.payload)
		if err != nil {
			cleanup()
			return &CacheError{Blob: blobFiles[p.kind], Err: err}
		}
		tmp, err := writeTemp(c.dir, blobFiles[p.kind], data)
		if err != nil {
			cleanup()
			return &CacheError{Blob: blobFiles[p.kind], Err: err}
		}
		temps[p.kind] = tmp
	}

	for kind, tmp := range temps {
		if err := os.Rename(tmp, filepath.Join(c.dir, blobFiles[kind])); err != nil {
			cleanup()
			return &CacheError{Blob: blobFiles[kind], Err: err}
		}
		delete(temps, kind)
	}

	cacheSaves.Inc()
	c.logger.Debug("semantic cache saved",
		slog.String("dir", c.dir),
		slog.String("build", build.String()))
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Load restores a Database. It fails as a unit: any missing, corrupt or
// mismatched blob, or any cross-structure inconsistency, yields a
// *CacheError and no database.
func (c *Cache) Load() (*Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var build uuid.UUID
	payloads := make(map[BlobKind][]byte, len(blobFiles))
	for _, kind := range []BlobKind{BlobGlossary, BlobHierarchy, BlobSememes, BlobParents} {
		name := blobFiles[kind]
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("%w: %w", errCacheAbsent, err)
			}
			return nil, &CacheError{Blob: name, Err: err}
		}
		h, payload, err := decodeBlob(kind, data)
		if err != nil {
			return nil, &CacheError{Blob: name, Err: err}
		}
		if kind == BlobGlossary {
			build = h.Build
		} else if h.Build != build {
			return nil, &CacheError{Blob: name, Err: ErrBuildMismatch}
		}
		payloads[kind] = payload
	}

	glossary, err := decodeGlossary(payloads[BlobGlossary])
	if err != nil {
		return nil, &CacheError{Blob: GlossaryFile, Err: err}
	}
	records, err := decodeHierarchy(payloads[BlobHierarchy])
	if err != nil {
		return nil, &CacheError{Blob: HierarchyFile, Err: err}
	}
	registry, err := decodeSememes(payloads[BlobSememes])
	if err != nil {
		return nil, &CacheError{Blob: SememesFile, Err: err}
	}
	parents, err := decodeParents(payloads[BlobParents])
	if err != nil {
		return nil, &CacheError{Blob: ParentsFile, Err: err}
	}

	db, err := assemble(registry, parents, glossary, records)
	if err != nil {
		return nil, &CacheError{Err: err}
	}
	return db, nil
}
