// Package vector turns words into dense sememe feature vectors by
// activating each sense's sememes and propagating halving weights up the
// sememe hierarchy.
package vector

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/sememe/core/sememe"
)

const (
	// DirectWeight is the weight of a sememe named by a sense.
	DirectWeight = 1.0

	// Decay is the factor applied per hierarchy level when propagating to
	// an ancestor.
	Decay = 0.5
)

// ErrNilDatabase is returned when a generator is created without a database.
var ErrNilDatabase = errors.New("vector: database is nil")

// Options configures a Generator.
type Options struct {
	// CacheSize bounds the number of memoized word vectors. Zero disables
	// the cache.
	CacheSize int
	Logger    *slog.Logger
}

// Generator produces feature vectors from a built database. It only reads
// the database, so one Generator may serve concurrent callers.
type Generator struct {
	db     *sememe.Database
	cache  *lru.Cache[string, []float64]
	logger *slog.Logger
}

// NewGenerator creates a generator over db.
func NewGenerator(db *sememe.Database, opts Options) (*Generator, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{db: db, logger: logger}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []float64](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("vector: create cache: %w", err)
		}
		g.cache = cache
	}
	return g, nil
}

// Dimension returns the length of every vector this generator produces.
func (g *Generator) Dimension() int {
	return g.db.Dimension()
}

// Vector returns the feature vector of word. ok is false when the word has
// no senses; a known word never yields an absent result.
func (g *Generator) Vector(word string) (vec []float64, ok bool) {
	if g.cache != nil {
		if cached, hit := g.cache.Get(word); hit {
			vectorsTotal.WithLabelValues("hit").Inc()
			return slices.Clone(cached), true
		}
	}

	senses, ok := g.db.Senses(word)
	if !ok {
		vectorsTotal.WithLabelValues("unknown").Inc()
		return nil, false
	}
	vectorsTotal.WithLabelValues("miss").Inc()

	vec = g.activate(senses)
	if g.cache != nil {
		g.cache.Add(word, vec)
		return slices.Clone(vec), true
	}
	return vec, true
}

// activate sets every sense sememe to DirectWeight and walks each one's
// ancestor chain, giving every ancestor the larger of its current weight
// and Decay times the weight of the level below.
func (g *Generator) activate(senses []sememe.GlossEntry) []float64 {
	reg := g.db.Registry()
	parents := g.db.Parents()
	vec := make([]float64, reg.Len())

	for _, sense := range senses {
		for _, name := range sense.Sememes {
			id, ok := reg.Lookup(name)
			if !ok {
				g.logger.Warn("sense sememe not registered",
					slog.String("word", sense.Word),
					slog.String("sememe", name))
				continue
			}
			vec[id] = DirectWeight

			curID := id
			for _, parent := range parents.Ancestors(name) {
				parentID, ok := reg.Lookup(parent)
				if !ok {
					break
				}
				vec[parentID] = max(vec[parentID], Decay*vec[curID])
				curID = parentID
			}
		}
	}
	return vec
}

// Normalize returns v scaled to unit Euclidean length. ok is false for an
// empty or all-zero vector, which has no direction.
func Normalize(v []float64) (out []float64, ok bool) {
	if len(v) == 0 {
		return nil, false
	}
	norm := floats.Norm(v, 2)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, false
	}
	out = slices.Clone(v)
	floats.Scale(1/norm, out)
	return out, true
}

// PairFeatures concatenates the normalized vectors of a and b. ok is false
// if either word is unknown or has a zero vector.
func (g *Generator) PairFeatures(a, b string) ([]float64, bool) {
	va, ok := g.normalized(a)
	if !ok {
		return nil, false
	}
	vb, ok := g.normalized(b)
	if !ok {
		return nil, false
	}
	return append(va, vb...), true
}

func (g *Generator) normalized(word string) ([]float64, bool) {
	v, ok := g.Vector(word)
	if !ok {
		return nil, false
	}
	return Normalize(v)
}

// Similarity returns the cosine similarity of the vectors of a and b.
func (g *Generator) Similarity(a, b string) (float64, bool) {
	va, ok := g.Vector(a)
	if !ok {
		return 0, false
	}
	vb, ok := g.Vector(b)
	if !ok {
		return 0, false
	}
	normA := math.Sqrt(vek.Dot(va, va))
	normB := math.Sqrt(vek.Dot(vb, vb))
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return vek.Dot(va, vb) / (normA * normB), true
}

// Weight is one non-zero component of a vector. Depth is the sememe's
// distance from its hierarchy root.
type Weight struct {
	ID     sememe.ID `json:"id"`
	Sememe string    `json:"sememe"`
	Depth  int       `json:"depth"`
	Value  float64   `json:"weight"`
}

// Explain lists the non-zero components of word's vector, heaviest first
// and then by ID.
func (g *Generator) Explain(word string) ([]Weight, bool) {
	vec, ok := g.Vector(word)
	if !ok {
		return nil, false
	}
	reg := g.db.Registry()
	parents := g.db.Parents()
	var out []Weight
	for i, w := range vec {
		if w == 0 {
			continue
		}
		name, _ := reg.Name(sememe.ID(i))
		out = append(out, Weight{ID: sememe.ID(i), Sememe: name, Depth: parents.Depth(name), Value: w})
	}
	slices.SortFunc(out, func(a, b Weight) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, true
}
