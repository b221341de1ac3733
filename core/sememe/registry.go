// Package sememe builds the semantic database: a dense registry of sememe
// IDs, the is-a hierarchy between sememes, and the word glossary, with a
// persisted cache that skips re-parsing the raw resources.
package sememe

import "fmt"

// ID is the dense integer identifier of a sememe. IDs are assigned
// sequentially from 0 with no gaps, so they double as vector indexes.
type ID uint32

// Registry provides bidirectional O(1) mapping between sememe names and IDs.
//
// Intern is only called while a database is being built; once the database
// is returned the registry is read-only and safe for concurrent readers
// without locking.
type Registry struct {
	toID   map[string]ID
	toName []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		toID:   make(map[string]ID),
		toName: make([]string, 0),
	}
}

// newRegistryFromNames rebuilds a registry whose IDs are the slice positions.
// Duplicate names are rejected because they would break the bijection.
func newRegistryFromNames(names []string) (*Registry, error) {
	r := &Registry{
		toID:   make(map[string]ID, len(names)),
		toName: names,
	}
	for i, name := range names {
		if _, dup := r.toID[name]; dup {
			return nil, fmt.Errorf("%w: sememe %q registered twice", ErrInconsistent, name)
		}
		r.toID[name] = ID(i)
	}
	return r, nil
}

// Intern returns the ID of name, assigning the next sequential ID if the
// name has not been seen before.
func (r *Registry) Intern(name string) ID {
	if id, ok := r.toID[name]; ok {
		return id
	}
	id := ID(len(r.toName))
	r.toID[name] = id
	r.toName = append(r.toName, name)
	return id
}

// Lookup returns the ID for name. ok is false for unknown names; the zero
// ID is never returned as a stand-in for absence.
func (r *Registry) Lookup(name string) (id ID, ok bool) {
	id, ok = r.toID[name]
	return id, ok
}

// Name returns the sememe name for id.
func (r *Registry) Name(id ID) (string, bool) {
	if int(id) >= len(r.toName) {
		return "", false
	}
	return r.toName[id], true
}

// Len returns the number of registered sememes, which is also the
// dimensionality of every feature vector.
func (r *Registry) Len() int {
	return len(r.toName)
}

// Names returns a copy of all names ordered by ID.
func (r *Registry) Names() []string {
	out := make([]string, len(r.toName))
	copy(out, r.toName)
	return out
}

// Verify checks that every assigned ID is below the registry size and that
// the two directions of the mapping agree.
func (r *Registry) Verify() error {
	if len(r.toID) != len(r.toName) {
		return fmt.Errorf("%w: %d names but %d ids", ErrInconsistent, len(r.toID), len(r.toName))
	}
	size := ID(len(r.toName))
	for name, id := range r.toID {
		if id >= size {
			return fmt.Errorf("%w: sememe %q has id %d >= size %d", ErrInconsistent, name, id, size)
		}
		if r.toName[id] != name {
			return fmt.Errorf("%w: id %d maps to %q, not %q", ErrInconsistent, id, r.toName[id], name)
		}
	}
	return nil
}
