package sememe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Source records how a Database was produced.
type Source string

const (
	SourceBuild Source = "build"
	SourceCache Source = "cache"
)

// Database is the read-only semantic index: the sememe registry, the
// parent map and the glossary. A Database is only obtainable fully built,
// from Build, Open or Cache.Load, and is never mutated afterwards, so it is
// safe for concurrent readers.
type Database struct {
	registry  *Registry
	parents   *ParentMap
	glossary  *Glossary
	hierarchy []HierarchyRecord
	anomalies []Anomaly
	source    Source
}

// Stats summarizes a database.
type Stats struct {
	Sememes        int    `json:"sememes"`
	Words          int    `json:"words"`
	Senses         int    `json:"senses"`
	HierarchyNodes int    `json:"hierarchy_records"`
	LinkedSememes  int    `json:"linked_sememes"`
	Anomalies      int    `json:"anomalies"`
	Source         Source `json:"source"`
}

// Registry returns the sememe registry.
func (db *Database) Registry() *Registry { return db.registry }

// Parents returns the hierarchy parent map.
func (db *Database) Parents() *ParentMap { return db.parents }

// Glossary returns the word glossary.
func (db *Database) Glossary() *Glossary { return db.glossary }

// Anomalies returns the hierarchy records that were turned into roots.
func (db *Database) Anomalies() []Anomaly { return slices.Clone(db.anomalies) }

// Source reports whether the database was built or restored from cache.
func (db *Database) Source() Source { return db.source }

// Dimension is the length of every feature vector generated from db.
func (db *Database) Dimension() int { return db.registry.Len() }

// Senses returns the senses of word in file order.
func (db *Database) Senses(word string) ([]GlossEntry, bool) {
	return db.glossary.Senses(word)
}

// Contains reports whether word is in the glossary.
func (db *Database) Contains(word string) bool {
	return db.glossary.Contains(word)
}

// Stats returns summary counts.
func (db *Database) Stats() Stats {
	return Stats{
		Sememes:        db.registry.Len(),
		Words:          db.glossary.Len(),
		Senses:         db.glossary.EntryCount(),
		HierarchyNodes: len(db.hierarchy),
		LinkedSememes:  db.parents.Len(),
		Anomalies:      len(db.anomalies),
		Source:         db.source,
	}
}

// registerSememes interns every glossary token in file order, then every
// hierarchy name in record order. IDs depend on this order.
func registerSememes(g *Glossary, records []HierarchyRecord) *Registry {
	reg := NewRegistry()
	g.eachEntry(func(e GlossEntry) {
		for _, s := range e.Sememes {
			reg.Intern(s)
		}
	})
	for _, rec := range records {
		reg.Intern(rec.Name)
	}
	return reg
}

// Build parses both resources through loader and assembles a database.
func Build(loader *Loader, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	records, err := loader.LoadHierarchy()
	if err != nil {
		return nil, err
	}
	glossary, err := loader.LoadGlossary()
	if err != nil {
		return nil, err
	}

	registry := registerSememes(glossary, records)
	parents, anomalies := BuildParentMap(records, logger)
	if err := registry.Verify(); err != nil {
		return nil, err
	}

	db := &Database{
		registry:  registry,
		parents:   parents,
		glossary:  glossary,
		hierarchy: records,
		anomalies: anomalies,
		source:    SourceBuild,
	}
	buildDuration.Observe(time.Since(start).Seconds())
	logger.Info("semantic database built",
		slog.Int("sememes", registry.Len()),
		slog.Int("words", glossary.Len()),
		slog.Int("anomalies", len(anomalies)),
		slog.Duration("elapsed", time.Since(start)))
	return db, nil
}

// assemble checks restored parts against each other: the registry must be
// exactly what the two-phase registration yields and the parent map must
// be exactly what the stored hierarchy resolves to.
func assemble(reg *Registry, parents *ParentMap, g *Glossary, records []HierarchyRecord) (*Database, error) {
	if err := reg.Verify(); err != nil {
		return nil, err
	}
	expected := registerSememes(g, records)
	if !slices.Equal(expected.toName, reg.toName) {
		return nil, fmt.Errorf("%w: registry does not match glossary and hierarchy", ErrInconsistent)
	}
	derived, anomalies := BuildParentMap(records, slog.New(slog.DiscardHandler))
	if !derived.Equal(parents) {
		return nil, fmt.Errorf("%w: parent map does not match hierarchy records", ErrInconsistent)
	}
	return &Database{
		registry:  reg,
		parents:   parents,
		glossary:  g,
		hierarchy: records,
		anomalies: anomalies,
		source:    SourceCache,
	}, nil
}

// Options configures Open.
type Options struct {
	HierarchyPath string
	GlossaryPath  string
	// CacheDir holds the persisted blobs. Empty disables the cache.
	CacheDir string
	// Rebuild ignores any existing cache and overwrites it.
	Rebuild bool
	Logger  *slog.Logger
}

// Open returns a database from the cache when possible and otherwise builds
// it from the raw resources and refreshes the cache. Any cache failure
// falls back to a full rebuild.
func Open(opts Options) (*Database, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cache *Cache
	if opts.CacheDir != "" {
		cache = NewCache(opts.CacheDir, logger)
	}

	if cache != nil && !opts.Rebuild {
		db, err := cache.Load()
		if err == nil {
			openTotal.WithLabelValues(string(SourceCache)).Inc()
			logger.Debug("semantic database restored from cache",
				slog.String("dir", opts.CacheDir),
				slog.Int("sememes", db.Dimension()))
			return db, nil
		}
		cacheLoadFailures.Inc()
		level := slog.LevelWarn
		if errors.Is(err, errCacheAbsent) {
			level = slog.LevelInfo
		}
		logger.Log(context.Background(), level, "semantic cache unusable, rebuilding",
			slog.String("dir", opts.CacheDir),
			slog.String("error", err.Error()))
	}

	db, err := Build(NewLoader(opts.HierarchyPath, opts.GlossaryPath), logger)
	if err != nil {
		return nil, err
	}
	openTotal.WithLabelValues(string(SourceBuild)).Inc()

	if cache != nil {
		if err := cache.Save(db); err != nil {
			logger.Warn("failed to save semantic cache",
				slog.String("dir", opts.CacheDir),
				slog.String("error", err.Error()))
		}
	}
	return db, nil
}
